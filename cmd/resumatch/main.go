// Package main is the resumatch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/analysis"
	"github.com/hyperjump/resumatch/internal/cli"
	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/embedding"
	"github.com/hyperjump/resumatch/internal/explain"
	"github.com/hyperjump/resumatch/internal/extract"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/internal/ranking"
	"github.com/hyperjump/resumatch/internal/server"
	"github.com/hyperjump/resumatch/internal/session"
	"github.com/hyperjump/resumatch/internal/storage"
	"github.com/hyperjump/resumatch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/resumatch/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory wins if present. A missing default config falls back to built-in defaults.
// A .env next to the config (or in the current directory) and the process environment
// override file values. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	resolved := path
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				resolved = fallback
			}
		}
	}
	cfg, err := config.Load(resolved)
	if err != nil {
		if !(resolved == defaultConfigPath && errors.Is(err, os.ErrNotExist)) {
			return nil, "", err
		}
		cfg, resolved = config.Default(), ""
	}

	envFiles := []string{".env"}
	if resolved != "" {
		envFiles = append(envFiles, filepath.Join(filepath.Dir(resolved), ".env"))
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, resolved, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "rank":
		runRank()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("resumatch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, debug bool) (*zap.Logger, func(), error) {
	if cfg.Log.ToFile {
		logger, closeFn, err := utils.NewFileLogger(debug, cfg.Log.Dir)
		if err != nil {
			return nil, nil, err
		}
		return logger, func() { _ = closeFn() }, nil
	}
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, closeLogger, err := newLogger(cfg, debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(context.Background(), cfg, logger, cfg.App.ExplainTopN())
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var opts []server.Option
	if components.Explainer != nil {
		opts = append(opts, server.WithExplainModel(components.Explainer.Model()))
	}
	srv := server.NewServer(components.Service, components.Embedder, cfg, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printRankUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: resumatch rank [flags] <file-or-dir>...\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Directories are scanned recursively for supported formats. Flags may follow the paths.

Examples:
  resumatch rank --job "Python developer with SQL" ./resumes
  resumatch rank --job-file job.txt --top 5 --explain 3 a.pdf b.docx
  resumatch rank --job-file job.txt --s3 incoming/2024/
  resumatch rank --server http://localhost:8080 --job "Go engineer" ./resumes
`)
}

// rankArgsReorder moves flags that appear after the first path to the front so that
// flag.Parse sees them; the flag package stops at the first non-flag argument.
func rankArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// readJob returns the job description from --job or the file named by --job-file.
func readJob(job, jobFile string) (string, error) {
	if jobFile != "" {
		if strings.TrimSpace(job) != "" {
			return "", errors.New("use either --job or --job-file, not both")
		}
		data, err := os.ReadFile(jobFile)
		if err != nil {
			return "", fmt.Errorf("read job file: %w", err)
		}
		job = string(data)
	}
	job = strings.TrimSpace(job)
	if job == "" {
		return "", errors.New("a job description is required (--job or --job-file)")
	}
	return job, nil
}

func runRank() {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	fs.Usage = func() { printRankUsage(fs) }
	configPath := fs.String("config", defaultConfigPath, "config file path")
	job := fs.String("job", "", "job description text")
	jobFile := fs.String("job-file", "", "file containing the job description")
	top := fs.Int("top", -1, "number of results to show, 0 for all (default from config)")
	explainN := fs.Int("explain", 0, "explain the first n results with the language model")
	s3Prefix := fs.String("s3", "", "rank resumes under this key prefix in the configured S3 bucket")
	serverURL := fs.String("server", "", "rank through a running server instead of locally")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(rankArgsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	jobText, err := readJob(*job, *jobFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *s3Prefix == "" && fs.NArg() == 0 {
		printRankUsage(fs)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	limit := *top
	if limit < 0 {
		limit = cfg.App.ResultsTopN()
	}

	paths, err := cli.ExpandPaths(fs.Args(), func(name string) bool {
		return hasExt(name, cfg.App.SupportedFormats)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rank failed: %v\n", err)
		os.Exit(1)
	}

	if *serverURL != "" {
		if *s3Prefix != "" {
			fmt.Fprintln(os.Stderr, "--s3 is not supported with --server")
			os.Exit(1)
		}
		resp, err := rankViaHTTP(*serverURL, jobText, paths, limit, *explainN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Rank failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnalysis(os.Stdout, resp, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, closeLogger, err := newLogger(cfg, cfg.Debug || *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, *explainN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	resp, err := rankLocal(ctx, components, jobText, paths, *s3Prefix, limit, *explainN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rank failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnalysis(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func rankLocal(ctx context.Context, c *Components, job string, paths []string, s3Prefix string, limit, explainN int) (*models.AnalysisResponse, error) {
	start := time.Now()
	var (
		sess *session.Session
		err  error
	)
	if s3Prefix != "" {
		if c.S3 == nil {
			return nil, errors.New("no S3 bucket configured")
		}
		sess, err = c.Service.AnalyzeRemote(ctx, job, c.S3, s3Prefix)
	} else {
		sess, err = c.Service.AnalyzePaths(ctx, job, paths)
	}
	if err != nil {
		return nil, err
	}
	n := explainN
	if n > c.Service.ExplainTopN() {
		n = c.Service.ExplainTopN()
	}
	if n > len(sess.Results()) {
		n = len(sess.Results())
	}
	for i := 0; i < n; i++ {
		if _, err := c.Service.Explain(ctx, sess.ID, i); err != nil {
			return nil, err
		}
	}
	resp := c.Service.View(sess, limit)
	resp.QueryTime = time.Since(start).Milliseconds()
	return &resp, nil
}

func rankViaHTTP(serverURL, job string, paths []string, limit, explainN int) (*models.AnalysisResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("job_description", job); err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := addFormFile(mw, p); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := http.Post(serverURL+"/api/v1/analyses", mw.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	var created models.AnalysisResponse
	if err := decodeResponse(resp, http.StatusCreated, &created); err != nil {
		return nil, err
	}

	for i := 0; i < explainN && i < created.Total; i++ {
		resp, err := http.Post(fmt.Sprintf("%s/api/v1/analyses/%s/explanations/%d", serverURL, url.PathEscape(created.SessionID), i), "", nil)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		if err := decodeResponse(resp, http.StatusOK, nil); err != nil {
			// Only the server's top N are explainable.
			break
		}
	}

	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	} else {
		q.Set("limit", "all")
	}
	resp, err = http.Get(serverURL + "/api/v1/analyses/" + url.PathEscape(created.SessionID) + "?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	var out models.AnalysisResponse
	if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	out.QueryTime = created.QueryTime
	return &out, nil
}

func addFormFile(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fw, err := mw.CreateFormFile("resumes", filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	return err
}

func decodeResponse(resp *http.Response, want int, v interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func hasExt(name string, formats []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range formats {
		if ext == f {
			return true
		}
	}
	return false
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil || format == cli.OutputCompact {
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
	status, err := statusViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*models.StatusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	var s models.StatusResponse
	if err := decodeResponse(resp, http.StatusOK, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Components holds the wired application services.
type Components struct {
	Embedder  *embedding.Lazy
	Explainer *explain.Explainer
	Service   *analysis.Service
	S3        *storage.S3Source
}

// Close releases the embedding model.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents wires the analysis service from cfg. explainTopN of 0 skips the
// explainer entirely. An explainer that cannot be built is logged and left out.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, explainTopN int) (*Components, error) {
	emb, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	c := &Components{Embedder: emb}

	var explainer analysis.Explainer
	if explainTopN > 0 {
		ex, err := explain.NewFromConfig(ctx, cfg.Explain, logger)
		if err != nil {
			logger.Warn("explanations disabled", zap.Error(err))
		} else {
			c.Explainer = ex
			explainer = ex
		}
	}

	if cfg.S3.Enabled() {
		client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		c.S3 = storage.NewS3Source(client, cfg.S3.Bucket, storage.WithS3Logger(logger))
	}

	staging := storage.NewStaging(cfg.App.UploadDir, cfg.App.SupportedFormats, cfg.App.MaxFileSizeBytes(),
		storage.WithLogger(logger))
	c.Service = analysis.NewService(
		ranking.NewRanker(emb, ranking.WithLogger(logger)),
		extract.NewExtractor(extract.WithLogger(logger)),
		explainer,
		staging,
		session.NewStore(),
		analysis.WithLogger(logger),
		analysis.WithExplainTopN(explainTopN),
		analysis.WithModelID(emb.ModelID()),
	)
	return c, nil
}

func printUsage() {
	fmt.Println(`resumatch - Rank resumes against a job description

Usage:
  resumatch server [flags]                Start the HTTP API server
  resumatch rank [flags] <file-or-dir>... Rank resumes against a job description
  resumatch status [flags]                Show server status
  resumatch version                       Show version
  resumatch help                          Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/resumatch/config.yaml)
  --debug            Enable debug logging

Rank Flags:
  --config string    Config file path
  --job string       Job description text
  --job-file string  File containing the job description
  --top int          Number of results to show, 0 for all (default from config)
  --explain int      Explain the first n results with the language model (default: 0)
  --s3 string        Rank resumes under this key prefix in the configured S3 bucket
  --server string    Rank through a running server instead of locally
  --output string    Output format: text, compact or json (default: text)

Status Flags:
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Examples:
  resumatch server
  resumatch rank --job "Python developer with SQL experience" ./resumes
  resumatch rank --job-file job.txt --explain 3 --output compact ./resumes
  resumatch status --output json`)
}
