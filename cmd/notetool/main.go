package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "notetool",
		Short:         "personal notes kept in a realtime store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd())
	addClientCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, appErr.ErrUnauthenticated) {
			fmt.Fprintln(os.Stderr, denialText)
			os.Exit(1)
		}
		logutil.GetLogger(context.Background()).Fatal("command failed", zap.Error(err))
	}
}
