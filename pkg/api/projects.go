package api

// Robot types supported for report delivery
const (
	RobotTypeSlack   = "slack"
	RobotTypeWebhook = "webhook"
)

// Project is a report destination for the results of a project.
type Project struct {
	ID          int    `mapstructure:"id" yaml:"id" json:"id"`
	ProjectName string `mapstructure:"project_name" yaml:"project_name" json:"projectName"`
	RobotType   string `mapstructure:"robot_type" yaml:"robot_type" json:"robotType,omitempty"`
	RobotToken  string `mapstructure:"robot_token" yaml:"robot_token" json:"-"`
	RobotSecret string `mapstructure:"robot_secret" yaml:"robot_secret" json:"-"`
}

// HasRobot reports whether reports can be delivered for the project.
func (p *Project) HasRobot() bool {
	return p.RobotType != "" && p.RobotToken != ""
}
