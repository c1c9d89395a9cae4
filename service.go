package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ewintr.nl/ytinsight/client"
	"ewintr.nl/ytinsight/fetcher"
	"ewintr.nl/ytinsight/handler"
	"ewintr.nl/ytinsight/process"
	"ewintr.nl/ytinsight/report"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ytinsight",
		Short: "Transcribe and analyze YouTube videos",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newProcessCmd())
	return root
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type collaborators struct {
	resolver fetcher.VideoInfoFetcher
	captions fetcher.CaptionFetcher
	audio    fetcher.AudioTranscriber
	analyzer fetcher.TranscriptAnalyzer
}

func newCollaborators(ctx context.Context, cfg Config, logger *slog.Logger) (collaborators, error) {
	httpClient := fetcher.NewHTTPClient(cfg.HTTPTimeout)

	var dataAPI *youtube.Service
	if cfg.YoutubeAPIKey != "" {
		svc, err := youtube.NewService(ctx, option.WithAPIKey(cfg.YoutubeAPIKey))
		if err != nil {
			return collaborators{}, fmt.Errorf("unable to create youtube service: %w", err)
		}
		dataAPI = svc
	}
	if cfg.OpenAIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, analysis will fail")
	}
	if cfg.TranscriberURL == "" {
		logger.Warn("TRANSCRIBER_URL is not set, audio transcription is unavailable")
	}

	return collaborators{
		resolver: fetcher.NewYoutube(fetcher.YoutubeInfo{OEmbedEndpoint: cfg.OEmbedURL}, httpClient, dataAPI, logger),
		captions: fetcher.NewCaptions(fetcher.CaptionsInfo{PlayerEndpoint: cfg.InnertubeURL, Language: cfg.CaptionLang}, httpClient, logger),
		audio:    fetcher.NewTranscriber(fetcher.TranscriberInfo{Endpoint: cfg.TranscriberURL, APIKey: cfg.TranscriberKey}, &http.Client{}, logger),
		analyzer: fetcher.NewOpenAI(fetcher.OpenAIInfo{APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL}, logger),
	}, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := newCollaborators(ctx, cfg, logger)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           handler.NewServer(c.resolver, c.captions, c.audio, c.analyzer, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				errc <- srv.ListenAndServe()
			}()
			logger.Info("http server started", slog.Int("port", cfg.Port))

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("unable to shut down cleanly", slog.String("error", err.Error()))
			}
			logger.Info("service stopped")
			return nil
		},
	}
}

func newProcessCmd() *cobra.Command {
	var (
		apiURL string
		opts   report.Options
	)
	cmd := &cobra.Command{
		Use:   "process <youtube-url>",
		Short: "Fetch, transcribe and analyze one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var steps *process.Steps
			if apiURL != "" {
				// no client timeout, audio transcription can take minutes
				api := client.New(apiURL, &http.Client{}, logger)
				steps = process.NewSteps(api, api, api, api)
			} else {
				c, err := newCollaborators(ctx, cfg, logger)
				if err != nil {
					return err
				}
				steps = process.NewSteps(c.resolver, c.captions, c.audio, c.analyzer)
			}

			stderr := cmd.ErrOrStderr()
			orch := process.NewOrchestrator(steps, logger, process.WithNotifier(process.NotifierFunc(func(n process.Notification) {
				fmt.Fprintf(stderr, "[%s] %s: %s\n", n.Severity, n.Title, n.Description)
			})))

			if err := orch.ProcessVideo(ctx, args[0]); err != nil {
				title, message := process.Describe(err)
				return fmt.Errorf("%s: %s", title, message)
			}
			res, ok := orch.Result()
			if !ok {
				return errors.New("processing finished without a result")
			}
			return report.Write(cmd.OutOrStdout(), res.Video, res.Transcript, res.Source, res.Analysis, opts)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "base url of a running ytinsight server; in-process when empty")
	cmd.Flags().StringVar(&opts.Search, "search", "", "only print transcript segments containing this text")
	cmd.Flags().BoolVar(&opts.Timestamps, "timestamps", true, "print segment timestamps")
	cmd.Flags().BoolVar(&opts.Analysis, "analysis", true, "print the analysis report")
	return cmd
}
