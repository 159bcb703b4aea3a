package main

import (
	"fmt"
	"log"
	"sort"

	"github.com/results-hub/results-hub/internal/config"
	"github.com/results-hub/results-hub/internal/logging"
	flag "github.com/spf13/pflag"
)

// checks a config directory without starting the service
func main() {
	configDir := flag.String("configdir", "", "Directory to search for configuration files.")
	flag.Parse()

	logger, _, err := logging.NewLogger()
	if err != nil {
		log.Fatal(err)
	}

	serviceConfig, err := config.LoadConfig(logger, "local", "", "", *configDir)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(config.RedactedJSON(serviceConfig, config.RedactedFields()))

	projects, err := config.LoadProjectConfigs(logger, *configDir)
	if err != nil {
		log.Fatal(err)
	}
	ids := make([]int, 0, len(projects))
	for id := range projects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		project := projects[id]
		fmt.Printf("project %d %s robot=%q\n", id, project.ProjectName, project.RobotType)
	}
}
