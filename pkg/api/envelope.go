package api

// RespEnum is the closed set of outcomes carried by the response envelope.
type RespEnum int

const (
	SearchOK RespEnum = iota
	DeleteOK
	HandleOK
	ResultClean
	ParamsError
	IDNotFound
	TestCountFail
	Error
)

type respInfo struct {
	code    int
	message string
}

var respInfos = map[RespEnum]respInfo{
	SearchOK:      {2000, "ok.search"},
	DeleteOK:      {2000, "ok.delete"},
	HandleOK:      {2000, "ok.handle"},
	ResultClean:   {2000, "result.clean"},
	ParamsError:   {3001, "params.error"},
	IDNotFound:    {3004, "not.found.id"},
	TestCountFail: {3009, "test.count.fail"},
	Error:         {4000, "error"},
}

func (r RespEnum) Code() int {
	return respInfos[r].code
}

func (r RespEnum) Message() string {
	return respInfos[r].message
}

// IsSuccess reports whether the outcome is one of the 2000 family.
func (r RespEnum) IsSuccess() bool {
	return r.Code() == 2000
}

// RespModel is the uniform {code, message, data} envelope returned by every results endpoint.
type RespModel struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func NewRespModel(resp RespEnum, data any) RespModel {
	return RespModel{
		Code:    resp.Code(),
		Message: resp.Message(),
		Data:    data,
	}
}
