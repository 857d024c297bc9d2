package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceid/internal/config"
	"github.com/kozaktomas/faceid/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "faceid",
	Short: "Enroll and identify faces from face mesh landmarks",
	Long: `faceid turns a 468-point face mesh and the matching face crop into a
512-dimensional identity embedding, stores enrolled faces, and identifies
new captures against everyone enrolled.

Storage is PostgreSQL with pgvector when DATABASE_URL is set, otherwise a
local SQLite file (SQLITE_PATH).`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
	logger.Init(config.Load().Log)
}
