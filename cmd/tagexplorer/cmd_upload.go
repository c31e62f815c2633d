package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagexplorer/backend/pkg/client"
	"github.com/tagexplorer/backend/pkg/loader"
	loaderio "github.com/tagexplorer/backend/pkg/loader/io"
	"github.com/tagexplorer/backend/pkg/logger"
)

type uploadOptions struct {
	name     string
	tags     []string
	keepName bool
	yes      bool
}

func newUploadCommand(root *rootOptions) *cobra.Command {
	opts := &uploadOptions{}
	cmd := &cobra.Command{
		Use:   "upload [path...]",
		Short: "Upload files, review the AI tag suggestions and save them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.name != "" && len(args) > 1 {
				return fmt.Errorf("--name can only be used with a single file")
			}
			u := &uploader{
				client: root.client(),
				files:  loaderio.NewIOGraphFileLoader(),
				in:     bufio.NewReader(cmd.InOrStdin()),
				out:    cmd.OutOrStdout(),
				opts:   *opts,
			}
			if cmd.Flags().Changed("tags") && opts.tags == nil {
				u.opts.tags = []string{}
			}
			return u.run(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "file name to save instead of the suggestion")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "tags to save instead of the suggestions")
	cmd.Flags().BoolVar(&opts.keepName, "keep-name", false, "keep the original file name")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "accept suggestions without asking")
	return cmd
}

type uploader struct {
	client *client.Client
	files  *loaderio.IOGraphFileLoader
	in     *bufio.Reader
	out    io.Writer
	opts   uploadOptions
}

// run processes every path and keeps going after a failed one. The error
// reports how many files failed.
func (u *uploader) run(ctx context.Context, paths []string) error {
	failed := 0
	for _, path := range paths {
		if err := u.uploadOne(ctx, path); err != nil {
			failed++
			logger.Error("Upload failed", "file", path, "err", err)
			fmt.Fprintf(u.out, "%s: %s\n", filepath.Base(path), client.Message(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func (u *uploader) uploadOne(ctx context.Context, path string) error {
	file := loader.NewGraphFile(loader.NewGraphFileParams{FilePath: path, Loader: u.files})
	data, err := file.GetText(ctx)
	u.files.Forget(file)
	if err != nil {
		return &client.PipelineError{Code: client.CodeUploadFailed, Err: err}
	}

	up, err := u.client.UploadAndAnalyze(ctx, client.Upload{
		Name:        filepath.Base(path),
		ContentType: file.MimeType,
		Data:        data,
	})
	if err != nil {
		return err
	}

	conf := client.Confirmation{Name: u.opts.name, Tags: u.opts.tags}
	if u.opts.keepName && conf.Name == "" {
		conf.Name = up.Name
	}

	u.printSuggestions(up, conf)
	if !u.opts.yes && !u.confirm() {
		fmt.Fprintf(u.out, "%s: skipped\n", up.Name)
		return nil
	}

	saved, err := u.client.Confirm(ctx, up, conf)
	if err != nil {
		return err
	}
	names := make([]string, len(saved.Tags))
	for i, t := range saved.Tags {
		names[i] = t.Name
	}
	fmt.Fprintf(u.out, "%s: saved as %q [%s]\n", up.Name, saved.Name, strings.Join(names, ", "))
	return nil
}

func (u *uploader) printSuggestions(up client.Uploaded, conf client.Confirmation) {
	a := up.Analysis
	if a.Fallback {
		fmt.Fprintf(u.out, "%s: AI analysis unavailable, no suggestions\n", up.Name)
	}
	if len(a.ExistingTags) > 0 {
		fmt.Fprintf(u.out, "  existing tags: %s\n", strings.Join(a.ExistingTags, ", "))
	}
	if len(a.NewTags) > 0 {
		fmt.Fprintf(u.out, "  new tags:      %s\n", strings.Join(a.NewTags, ", "))
	}
	if a.SuggestedName != nil && conf.Name == "" {
		fmt.Fprintf(u.out, "  name:          %s\n", *a.SuggestedName)
	}
	if conf.Tags != nil {
		fmt.Fprintf(u.out, "  saving with:   %s\n", strings.Join(conf.Tags, ", "))
	}
}

func (u *uploader) confirm() bool {
	fmt.Fprint(u.out, "Save? [Y/n] ")
	line, err := u.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}
