package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCmd(g *globalOpts) *cobra.Command {
	var (
		backend  string
		bucket   string
		prefix   string
		localDir string
		verify   bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the JSON and CSV artifacts to blob storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			pc := &a.cfg.Publish
			pc.Backend = firstNonEmpty(backend, pc.Backend)
			pc.Bucket = firstNonEmpty(bucket, pc.Bucket)
			pc.Prefix = firstNonEmpty(prefix, pc.Prefix)
			pc.LocalDir = firstNonEmpty(localDir, pc.LocalDir)
			pc.Verify = pc.Verify || verify

			keys, err := a.publishArtifacts(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(a.stdout, k)
			}
			a.pushMetrics(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Storage backend: local, s3 or gcs")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket name for s3 and gcs")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Object name prefix")
	cmd.Flags().StringVar(&localDir, "local-dir", "", "Target directory for the local backend")
	cmd.Flags().BoolVar(&verify, "verify", false, "Read each object back after upload and compare it (also enabled by publish.verify)")

	return cmd
}
