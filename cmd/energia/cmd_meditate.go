package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"energia/internal/pipeline"
)

var (
	meditateStyle string
	meditateTheme string
)

var meditateCmd = &cobra.Command{
	Use:   "meditate [image-url]",
	Short: "Generate a meditation from a photo",
	Long: `Runs the full pipeline for one image: analysis, emotion extraction,
meditation generation, and persistence. The image may be an https URL, a
Google Photos link, or a data URL. The rendered meditation is printed to
the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runMeditate,
}

func init() {
	meditateCmd.Flags().StringVar(&meditateStyle, "style", "", "meditation style (Calm, Energetic, Healing, Mindful, Spiritual)")
	meditateCmd.Flags().StringVar(&meditateTheme, "theme", "", "meditation theme (Nature, Focus, Relaxation, Gratitude, Stress Relief)")
}

func runMeditate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.pipeline.Run(ctx, pipeline.Request{
		ImageURL: args[0],
		UserID:   userID,
		Style:    meditateStyle,
		Theme:    meditateTheme,
	})
	if err != nil {
		return fmt.Errorf("meditation generation failed: %w", err)
	}

	logger.Info("meditation generated",
		zap.String("id", res.MeditationID),
		zap.String("source", res.NarrativeSource),
		zap.String("status", res.Status),
		zap.Bool("visionFallback", res.VisionFallback))

	fmt.Println(renderMarkdown(res.Meditation.GeminiGuidance))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("id: %s  source: %s  status: %s",
		res.MeditationID, res.NarrativeSource, res.Status)))
	return nil
}
