package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anime-shed/ui-critic-go/internal/client"
	"github.com/anime-shed/ui-critic-go/internal/logger"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	flags := pflag.NewFlagSet("critique", pflag.ExitOnError)
	flags.String("server", "http://localhost:8000", "analysis service base URL")
	flags.Duration("timeout", 60*time.Second, "overall request timeout")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: critique [flags] <screenshot>\n\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("CRITIC")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		logger.WithError(err).Fatal("Failed to bind flags")
	}

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(2)
	}

	if err := run(v.GetString("server"), v.GetDuration("timeout"), flags.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(server string, timeout time.Duration, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	c := client.New(server, nil)
	session := client.NewSession(c, logger.Logger)

	st := session.Select(client.SelectedFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:        data,
	})
	fmt.Printf("Selected %s (%s)\n", st.File.Name, st.Preview)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	st = session.Analyze(ctx)
	if st.Err != "" {
		return fmt.Errorf("%s", st.Err)
	}

	fmt.Printf("\n%s\n", st.Feedback.OverallFeedback)
	for i, item := range st.Feedback.SpecificFeedback {
		fmt.Printf("\n%d. %s\n", i+1, item.Critique)
		if len(item.InspirationKeywords) > 0 {
			fmt.Printf("   keywords: %s\n", strings.Join(item.InspirationKeywords, ", "))
		}
		if item.CroppedImageURL != nil {
			fmt.Printf("   crop: %s\n", c.ResolveURL(*item.CroppedImageURL))
		} else {
			fmt.Printf("   crop: unavailable (%s)\n", item.CropCoordinates)
		}
	}
	return nil
}
