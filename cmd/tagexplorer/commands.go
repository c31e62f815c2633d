package main

import (
	"github.com/spf13/cobra"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/client"
)

type rootOptions struct {
	baseURL string
	token   string
}

func (o *rootOptions) client() *client.Client {
	return client.New(client.Options{BaseURL: o.baseURL, Token: o.token})
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "tagexplorer",
		Short:         "Upload, tag and export files of a tagexplorer library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url",
		util.GetEnvString("TAGEXPLORER_URL", client.DefaultBaseURL), "server base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token",
		util.GetEnv("TAGEXPLORER_TOKEN"), "bearer token or master API key")

	rootCmd.AddCommand(newUploadCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	return rootCmd
}
