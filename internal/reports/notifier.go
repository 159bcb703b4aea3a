package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/results-hub/results-hub/pkg/api"
)

// Message is a report rendered independently of the robot that delivers it.
type Message struct {
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Status string  `json:"status,omitempty"`
	Link   string  `json:"link,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PlainText renders the message for robots that only accept text.
func (m *Message) PlainText() string {
	var b strings.Builder
	b.WriteString(m.Title)
	if m.Text != "" {
		b.WriteString("\n")
		b.WriteString(m.Text)
	}
	for _, f := range m.Fields {
		fmt.Fprintf(&b, "\n%s: %s", f.Name, f.Value)
	}
	if m.Link != "" {
		b.WriteString("\n")
		b.WriteString(m.Link)
	}
	return b.String()
}

// Notifier delivers a message to the robot of a project.
type Notifier interface {
	Notify(ctx context.Context, project *api.Project, message *Message) error
}

// LogNotifier writes the messages to the service log. It is used for the
// projects without a robot.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, project *api.Project, message *Message) error {
	n.logger.Info("Report", "project_id", project.ID, "project", project.ProjectName, "title", message.Title, "message", message.PlainText())
	return nil
}

// Notifiers selects the notifier for a project by its robot type.
type Notifiers struct {
	byType   map[string]Notifier
	fallback Notifier
}

func NewNotifiers(fallback Notifier) *Notifiers {
	return &Notifiers{byType: map[string]Notifier{}, fallback: fallback}
}

func (n *Notifiers) Register(robotType string, notifier Notifier) *Notifiers {
	n.byType[robotType] = notifier
	return n
}

func (n *Notifiers) For(project *api.Project) (Notifier, error) {
	if !project.HasRobot() {
		return n.fallback, nil
	}
	notifier, ok := n.byType[project.RobotType]
	if !ok {
		return nil, fmt.Errorf("unsupported robot type %q for project %d", project.RobotType, project.ID)
	}
	return notifier, nil
}
