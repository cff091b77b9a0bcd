package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type createBatchFileRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content_base64"`
}

type createBatchRequest struct {
	OwnerID        string                    `json:"owner_id"`
	JobDescription string                    `json:"job_description"`
	Files          []createBatchFileRequest `json:"files"`
}

type createBatchResult struct {
	BatchID string `json:"BatchID"`
}

func newCreateCommand() *cobra.Command {
	var jobDescription string
	var filePaths []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a batch from a job description and one or more files",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]createBatchFileRequest, 0, len(filePaths))
			for _, p := range filePaths {
				data, err := os.ReadFile(p)
				if err != nil {
					return &CLIError{Code: ExitUpstreamUnavailable, Message: fmt.Sprintf("read %s: %v", p, err)}
				}
				files = append(files, createBatchFileRequest{
					Filename: filepath.Base(p),
					Content:  base64.StdEncoding.EncodeToString(data),
				})
			}

			c := newClient(engineURL)
			var result createBatchResult
			if err := c.postJSON("/batches", createBatchRequest{
				OwnerID:        ownerID,
				JobDescription: jobDescription,
				Files:          files,
			}, &result); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.BatchID)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobDescription, "job-description", "", "job description text")
	cmd.Flags().StringArrayVar(&filePaths, "file", nil, "path to a candidate document; repeatable")
	_ = cmd.MarkFlagRequired("job-description")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
