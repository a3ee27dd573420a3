package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jjtimmons/pudu/internal/protocol"
	"github.com/jjtimmons/pudu/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// outputFlags registers the flags every protocol generating command shares
func outputFlags(c *cobra.Command) {
	c.Flags().StringP("out", "o", "", "write the protocol to a file <JSON>")
	c.Flags().StringP("python", "p", "", "write an Opentrons protocol to a file, stdout if no other output is set <PY>")
	c.Flags().StringP("report", "r", "", "write a report of the layout and tips to a file <JSON>")
	c.Flags().Bool("layout", false, "print plate maps of the layout")
	c.Flags().Bool("dry-run", false, "replay the protocol against a simulated robot, logging every command")
}

// output writes a generated protocol everywhere the command's flags ask
func output(cmd *cobra.Command, p *protocol.Protocol, start time.Time) error {
	flags := cmd.Flags()
	out, _ := flags.GetString("out")
	python, _ := flags.GetString("python")
	reportPath, _ := flags.GetString("report")
	layout, _ := flags.GetBool("layout")
	dryRun, _ := flags.GetBool("dry-run")

	r := report.New(p, time.Since(start).Seconds())
	zap.L().Info("planned protocol",
		zap.String("protocol", p.Metadata.Name),
		zap.Int("commands", r.Commands),
		zap.Any("tips", r.Tips))

	if dryRun {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		sim := protocol.NewSimulator()
		if err := protocol.Replay(ctx, protocol.Tee{protocol.LogRobot{Logger: zap.L()}, sim}, p); err != nil {
			return fmt.Errorf("dry run failed: %w", err)
		}
	}
	if out != "" {
		if err := writeFile(out, func(w io.Writer) error { return protocol.WriteJSON(w, p) }); err != nil {
			return err
		}
	}
	if reportPath != "" {
		if err := writeFile(reportPath, r.WriteJSON); err != nil {
			return err
		}
	}
	if layout {
		fmt.Fprint(cmd.OutOrStdout(), r.Render())
	}

	switch {
	case python != "":
		return writeFile(python, func(w io.Writer) error { return protocol.WritePython(w, p) })
	case out == "" && reportPath == "" && !layout && !dryRun:
		return protocol.WritePython(cmd.OutOrStdout(), p)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return err
	}
	zap.L().Debug("wrote file", zap.String("path", path))
	return nil
}
