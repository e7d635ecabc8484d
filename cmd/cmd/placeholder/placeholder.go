package placeholder

import (
	"fmt"
	"log/slog"
	"path"

	"github.com/spf13/cobra"
	"github.com/warmans/demonlist/pkg/flag"
	"github.com/warmans/demonlist/pkg/thumbnail"
)

func NewPlaceholderCommand(logger *slog.Logger) *cobra.Command {

	var outputPath string
	var label string
	var width int64
	var height int64

	cmd := &cobra.Command{
		Use:   "placeholder",
		Short: "render the default thumbnail to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 1 || height < 1 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}
			if err := thumbnail.RenderPlaceholder(int(width), int(height), label).SavePNG(outputPath); err != nil {
				return fmt.Errorf("failed to write placeholder: %w", err)
			}
			logger.Info("Wrote placeholder", slog.String("path", outputPath))
			return nil
		},
	}

	flag.StringVarEnv(cmd.Flags(), &outputPath, "", "output", "./assets/"+path.Base(thumbnail.DefaultPath), "")
	flag.StringVarEnv(cmd.Flags(), &label, "", "label", "No thumbnail", "text drawn under the play button")
	flag.Int64VarEnv(cmd.Flags(), &width, "", "width", thumbnail.PlaceholderWidth, "")
	flag.Int64VarEnv(cmd.Flags(), &height, "", "height", thumbnail.PlaceholderHeight, "")

	envErr := flag.Parse()
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return envErr
	}

	return cmd
}
