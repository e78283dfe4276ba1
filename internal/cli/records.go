package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/medvault/internal/filex"
	"github.com/dmitrijs2005/medvault/internal/materialize"
	"github.com/dmitrijs2005/medvault/internal/services"
	"github.com/spf13/cobra"
)

func (r *runner) uploadCommand() *cobra.Command {
	var (
		file     string
		mimeType string
		title    string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a local file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := r.userID()
			if err != nil {
				return err
			}
			src := filex.LocalFile{Path: file}
			if mimeType == "" {
				if mimeType, err = detectMimeType(cmd, src); err != nil {
					return err
				}
			}

			ref, err := r.app.Upload.UploadEncrypted(cmd.Context(), src, userID, mimeType,
				services.WithTitle(title), services.WithTags(tags...))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(r.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ref)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path of the file to upload")
	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type (detected when empty)")
	cmd.Flags().StringVar(&title, "title", "", "record title (default file name)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "record tag, repeatable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func detectMimeType(cmd *cobra.Command, src filex.LocalFile) (string, error) {
	if t := mime.TypeByExtension(filepath.Ext(src.Path)); t != "" {
		return t, nil
	}
	data, err := src.ReadAll(cmd.Context())
	if err != nil {
		return "", err
	}
	return http.DetectContentType(data), nil
}

func (r *runner) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := r.userID()
			if err != nil {
				return err
			}
			refs, err := r.app.Records.List(cmd.Context(), userID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(r.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tMIME\tENCRYPTED\tSIZE\tTITLE")
			for _, ref := range refs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%s\n",
					ref.ID, ref.CreatedAt.Format(time.RFC3339), ref.MimeType,
					ref.Encryption.Encrypted, ref.Size, ref.Title)
			}
			return tw.Flush()
		},
	}
}

func (r *runner) viewCommand() *cobra.Command {
	var (
		recordID string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Decrypt a record and print a viewable resource",
		Long: `view prints a data URI on the native platform. On the web platform it
serves an object URL from the viewer address until interrupted, then
revokes it. With --out the decrypted file is written to disk instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := r.userID()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if out != "" {
				_, plaintext, err := r.app.View.Open(ctx, recordID, userID)
				if err != nil {
					return err
				}
				return os.WriteFile(out, plaintext, 0o600)
			}

			res, err := r.app.View.View(ctx, recordID, userID)
			if err != nil {
				return err
			}

			if res.Kind != materialize.KindObjectURL {
				_, err = fmt.Fprintln(r.stdout, res.URI)
				return err
			}

			defer r.app.Registry.RevokeObjectURL(res.URI)
			fmt.Fprintf(r.stdout, "%s\nopen %s (Ctrl+C to close)\n", res.URI, materialize.HTTPURL(res.URI))
			return r.app.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&recordID, "record", "", "record id")
	cmd.Flags().StringVar(&out, "out", "", "write the decrypted file here")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func (r *runner) deleteCommand() *cobra.Command {
	var recordID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a record and its blob",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := r.userID()
			if err != nil {
				return err
			}
			return r.app.Records.Delete(cmd.Context(), recordID, userID)
		},
	}

	cmd.Flags().StringVar(&recordID, "record", "", "record id")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func (r *runner) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the viewer HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.Serve(cmd.Context())
		},
	}
}

func (r *runner) tokenCommand() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an identity token signed with the configured secret (development)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			tok, err := r.app.Tokens.Issue(user, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(r.stdout, tok)
			return err
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user identifier")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
