package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/platewise/internal/cli"
	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/model"
)

func lookupCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "lookup <food:grams>...",
		Short: "Estimate nutrition for foods you name",
		Long: `Lookup estimates nutrition for foods given as name:grams pairs, without
uploading a photo. For example:

  platewise lookup apple:150 "white rice:200"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			foods, err := parseFoodPairs(args)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("source") {
				viper.Set("nutrition.source", source)
			}
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			pipeline, err := buildPipeline(settings)
			if err != nil {
				return err
			}

			result, err := pipeline.EnrichFoods(cmd.Context(), foods)
			if err != nil {
				return fmt.Errorf("failed to look up nutrition: %w", err)
			}

			out := cmd.OutOrStdout()
			writeln(out, cli.RenderFoods(result.Foods))
			if result.TotalNutrition != nil {
				writeln(out, cli.RenderTotals(*result.TotalNutrition))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "nutrition source (estimated, usda)")
	return cmd
}

// parseFoodPairs parses "name:grams" arguments. The last colon separates
// the weight so names may contain colons.
func parseFoodPairs(args []string) ([]model.DetectedFood, error) {
	foods := make([]model.DetectedFood, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, ":")
		if i <= 0 {
			return nil, common.NewUserError(fmt.Sprintf("Expected name:grams, got %q", arg), nil)
		}

		name := strings.TrimSpace(arg[:i])
		grams, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(arg[i+1:]), "g"), 64)
		if err != nil || grams < 0 || name == "" {
			return nil, common.NewUserError(fmt.Sprintf("Expected name:grams with a non-negative weight, got %q", arg), err)
		}

		foods = append(foods, model.DetectedFood{
			EnglishName:          name,
			EstimatedWeightGrams: grams,
			Confidence:           1,
			Method:               "manual",
		})
	}
	return foods, nil
}
