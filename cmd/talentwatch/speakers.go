package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/talentwatch/talentwatch/application/service"
	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/internal/log"
)

func speakersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "Manage conference speakers",
	}

	cmd.AddCommand(speakersIngestCmd())
	cmd.AddCommand(speakersResolveCmd())

	return cmd
}

// ingestFile is the JSON shape consumed by `speakers ingest`.
type ingestFile struct {
	Conference string `json:"conference"`
	Year       int    `json:"year"`
	Speakers   []struct {
		Name       string `json:"name"`
		WebsiteURL string `json:"website_url"`
	} `json:"speakers"`
	Talks []struct {
		Speaker string `json:"speaker"`
		Title   string `json:"title"`
		Company string `json:"company"`
	} `json:"talks"`
}

func speakersIngestCmd() *cobra.Command {
	var (
		envFile    string
		file       string
		mergeFile  string
		videosFile string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest one conference's speakers and talks from a JSON file",
		Long: `Ingest one conference's speakers and talks from a JSON file.

Each conference is ingested at most once: re-running the same (conference,
year) pair is a no-op, so a crashed ingest can be retried safely.

A secondary --merge-file fills talk titles the primary file is missing and
contributes speakers the primary file lacks. A --videos-file of raw video
titles (one per line) is parsed into further talks by the configured LLM.

File format:
  {
    "conference": "GopherCon",
    "year": 2026,
    "speakers": [{"name": "Ada Lovelace", "website_url": "https://..."}],
    "talks": [{"speaker": "Ada Lovelace", "title": "..."}]
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeakersIngest(envFile, file, mergeFile, videosFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&file, "file", "", "Path to the conference JSON file")
	cmd.Flags().StringVar(&mergeFile, "merge-file", "", "Secondary conference JSON file merged into the primary")
	cmd.Flags().StringVar(&videosFile, "videos-file", "", "File of raw video titles, one per line")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readIngestFile(path string) (ingestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingestFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	var parsed ingestFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ingestFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

func readVideoTitles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var titles []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			titles = append(titles, line)
		}
	}
	return titles, nil
}

func runSpeakersIngest(envFile, file, mergeFile, videosFile string) error {
	parsed, err := readIngestFile(file)
	if err != nil {
		return err
	}
	if parsed.Conference == "" || parsed.Year == 0 {
		return fmt.Errorf("%s: conference and year are required", file)
	}

	ingest := service.ConferenceIngest{
		Name: parsed.Conference,
		Year: parsed.Year,
	}
	for _, sp := range parsed.Speakers {
		ingest.Speakers = append(ingest.Speakers, speaker.NewSpeaker(sp.Name, sp.WebsiteURL))
	}
	for _, t := range parsed.Talks {
		ingest.Talks = append(ingest.Talks,
			speaker.NewTalk(t.Speaker, parsed.Conference, parsed.Year, t.Title, t.Company))
	}

	var secondary []speaker.Talk
	if mergeFile != "" {
		merge, err := readIngestFile(mergeFile)
		if err != nil {
			return err
		}
		for _, sp := range merge.Speakers {
			ingest.Speakers = append(ingest.Speakers, speaker.NewSpeaker(sp.Name, sp.WebsiteURL))
		}
		for _, t := range merge.Talks {
			secondary = append(secondary,
				speaker.NewTalk(t.Speaker, parsed.Conference, parsed.Year, t.Title, t.Company))
		}
	}

	var videoTitles []string
	if videosFile != "" {
		if videoTitles, err = readVideoTitles(videosFile); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := log.WithRunID(context.Background())
	if err := client.Speakers.IngestSources(ctx, ingest, secondary, videoTitles); err != nil {
		return fmt.Errorf("ingest %s %d: %w", parsed.Conference, parsed.Year, err)
	}

	fmt.Printf("Ingested %s %d: %d speakers, %d talks\n",
		parsed.Conference, parsed.Year, len(ingest.Speakers), len(ingest.Talks))
	return nil
}

func speakersResolveCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve speaker names to profile URLs",
		Long: `Resolve speaker names to profile URLs.

First backfills from people already in the roster by normalized name, then
consumes unseen people-search batches and matches the remaining names.
Ambiguous names stay unresolved and are retried on the next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeakersResolve(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runSpeakersResolve(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := log.WithRunID(context.Background())

	known, err := client.Speakers.MatchKnownPeople(ctx)
	if err != nil {
		return fmt.Errorf("match known people: %w", err)
	}
	if known > 0 {
		fmt.Printf("Backfilled %d speakers from the roster\n", known)
	}

	result, err := client.Speakers.ResolveProfiles(ctx)
	if err != nil {
		return fmt.Errorf("resolve profiles: %w", err)
	}

	fmt.Printf("Consumed %d batches: %d matched, %d updated, %d skipped, %d unresolved\n",
		result.BatchesFolded, result.Matched, result.Updated, result.Skipped, result.Unresolved)
	return nil
}
