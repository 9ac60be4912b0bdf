// Command submit-assignment hands in an assignment from the command line.
//
//	submit-assignment -assignment <id> -text "my answer" report.pdf figure.png
//
// The student identity and bearer token are read from a JSON identity file
// (see -identity).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/internal/observability"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/submission"
)

type options struct {
	apiURL       string
	identityPath string
	assignmentID string
	text         string
	textFile     string
	timeout      time.Duration
	files        []string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger, err := observability.NewLogger(envOr("LOG_LEVEL", "warn"), "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("submit-assignment", flag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	fs.StringVar(&opts.apiURL, "api", envOr("EDUTRACKR_API_URL", "http://localhost:8080"), "EduTrackr API base URL")
	fs.StringVar(&opts.identityPath, "identity", defaultIdentityPath(), "path to the signed-in student identity file")
	fs.StringVar(&opts.assignmentID, "assignment", "", "assignment ID (required)")
	fs.StringVar(&opts.text, "text", "", "submission text")
	fs.StringVar(&opts.textFile, "text-file", "", "read submission text from file")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "request timeout")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: submit-assignment -assignment ID [-text TEXT | -text-file PATH] [FILE...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.files = fs.Args()

	if opts.assignmentID == "" {
		fmt.Fprintln(output, "-assignment is required")
		fs.Usage()
		return options{}, errors.New("missing -assignment")
	}
	if opts.text != "" && opts.textFile != "" {
		fmt.Fprintln(output, "-text and -text-file are mutually exclusive")
		return options{}, errors.New("conflicting text flags")
	}
	return opts, nil
}

func run(ctx context.Context, opts options, logger *zap.Logger, out io.Writer) error {
	text := opts.text
	if opts.textFile != "" {
		raw, err := os.ReadFile(opts.textFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		text = string(raw)
	}

	files, err := readFiles(opts.files)
	if err != nil {
		return err
	}

	store := submission.NewFileIdentityStore(opts.identityPath)
	student, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load identity from %s: %w", opts.identityPath, err)
	}

	submitter := submission.NewHTTPSubmitter(opts.apiURL, student.Token, &http.Client{Timeout: opts.timeout})
	packager := submission.NewPackager(submitter, submission.StaticIdentityStore{Student: student}, logger)

	ack, err := packager.Submit(ctx, opts.assignmentID, text, files)
	if err != nil {
		return err
	}

	status := "on time"
	if ack.Late {
		status = "late"
	}
	fmt.Fprintf(out, "submitted %s (%d files, %s)\n", ack.ID, len(files), status)
	return nil
}

// readFiles loads attachments in argument order
func readFiles(paths []string) ([]submission.File, error) {
	files := make([]submission.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		files = append(files, submission.File{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Data:        data,
		})
	}
	return files, nil
}

func defaultIdentityPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "identity.json"
	}
	return filepath.Join(dir, "edutrackr", "identity.json")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
