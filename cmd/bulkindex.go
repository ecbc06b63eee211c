package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spigell/optiplan-ai/internal/logger"
	"github.com/spigell/optiplan-ai/internal/matching"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Proceed with indexing?",
	Items: []string{PromptYes, PromptNo},
}

var bulkIndexCmd = &cobra.Command{
	Use:   "bulk-index",
	Short: "Normalize raw user profiles and index them into the skills space",
	Run: func(cmd *cobra.Command, _ []string) {
		bulkIndex(cmd)
	},
}

func init() {
	rootCmd.AddCommand(bulkIndexCmd)

	bulkIndexCmd.Flags().StringP("file", "f", "", "a JSON file with raw user profiles")
	bulkIndexCmd.Flags().String("project-id", "bulk-index-project", "project id to index under")
	bulkIndexCmd.Flags().String("manager-id", "bulk-index-manager", "manager id to index under")
	bulkIndexCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	if err := bulkIndexCmd.MarkFlagRequired("file"); err != nil {
		log.Fatalf("marking file flag required: %v", err)
	}
}

// bulkIndex is the main command for importing raw profile exports: skill
// names are mapped to categories and proficiency is rescaled to the
// canonical 0-100 scale before anything reaches the index.
func bulkIndex(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	path, _ := cmd.Flags().GetString("file")
	projectID, _ := cmd.Flags().GetString("project-id")
	managerID, _ := cmd.Flags().GetString("manager-id")

	profiles, err := loadProfiles(path)
	if err != nil {
		zlog.Fatal("loading user profiles", zap.String("file", path), zap.Error(err))
	}

	zlog.Info("loaded user profiles", zap.Int("count", len(profiles)))

	users := make([]matching.User, 0, len(profiles))
	for _, profile := range profiles {
		user := matching.TransformProfile(profile)
		users = append(users, user)
		zlog.Debug("transformed profile",
			zap.String("user_id", user.ID),
			zap.String("name", user.Name),
			zap.Int("skills", len(user.Skills)),
		)
	}

	reportSkillDistribution(users, zlog)

	if autoApprove, _ := cmd.Flags().GetBool("yes"); !autoApprove {
		_, action, err := prompt.Run()
		if err != nil {
			zlog.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			zlog.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	engine, err := buildEngine(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building the matching engine", zap.Error(err))
	}

	scope := matching.ProjectScope{ProjectID: projectID, ManagerID: managerID}

	report, err := engine.IndexUsers(ctx, users, scope)
	if err != nil {
		zlog.Fatal("indexing users", zap.Error(err))
	}

	if len(report.FailedBatches) > 0 {
		zlog.Warn("some batches failed and can be retried",
			zap.Int("failed_batches", len(report.FailedBatches)),
		)
	}

	zlog.Info("successfully indexed users",
		zap.Int("users", len(users)),
		zap.Int("documents", report.Documents),
	)
}

func loadProfiles(path string) ([]matching.RawProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var profiles []matching.RawProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}

	return profiles, nil
}

func reportSkillDistribution(users []matching.User, zlog *zap.Logger) {
	categories := map[string]int{}
	total := 0
	for _, user := range users {
		for _, skill := range user.Skills {
			categories[skill.Category]++
			total++
		}
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := []zap.Field{zap.Int("total_skills", total)}
	for _, name := range names {
		fields = append(fields, zap.Int(name, categories[name]))
	}

	zlog.Info("skill distribution by category", fields...)
}
