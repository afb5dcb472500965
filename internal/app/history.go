package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"kalaghar.in/lokakala/internal/cli"
	"kalaghar.in/lokakala/internal/db"
	"kalaghar.in/lokakala/internal/language"
)

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	skip := fs.Int("skip", 0, "Number of records to skip")
	limit := fs.Int("limit", 20, "Maximum number of records to return (1-100)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *skip < 0 {
		fmt.Fprintln(os.Stderr, "--skip must be >= 0")
		return 2
	}
	if *limit < 1 || *limit > 100 {
		fmt.Fprintln(os.Stderr, "--limit must be between 1 and 100")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, cancel, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	store := db.NewArtworkStore(pool)
	rows, err := store.List(ctx, *skip, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List history failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(historyJSON(rows)); err != nil {
			fmt.Fprintf(os.Stderr, "Encode history failed: %v\n", err)
			return 1
		}
		return 0
	}

	headers := []string{"ID", "ART NAME", "REGION", "ENGLISH", "LANGS", "CREATED"}
	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, []string{
			strconv.FormatInt(row.ID, 10),
			truncateForTable(row.ArtName, 24),
			truncateForTable(row.Region, 16),
			truncateForTable(row.English, 48),
			translatedLanguages(row),
			formatUTCTimestamp(row.CreatedAt),
		})
	}
	if err := writeTable(headers, tableRows); err != nil {
		fmt.Fprintf(os.Stderr, "Write history failed: %v\n", err)
		return 1
	}
	return 0
}

type historyRecord struct {
	ID        int64             `json:"id"`
	ArtName   string            `json:"art_name"`
	ArtStyle  string            `json:"art_style"`
	Region    string            `json:"region"`
	Question  string            `json:"question,omitempty"`
	English   string            `json:"english"`
	Langs     map[string]string `json:"translations"`
	CreatedAt string            `json:"created_at"`
}

func historyJSON(rows []db.Artwork) []historyRecord {
	records := make([]historyRecord, 0, len(rows))
	for _, row := range rows {
		translations := make(map[string]string)
		for _, lang := range language.Supported() {
			if text := row.Translation(lang); text != nil {
				translations[string(lang)] = *text
			}
		}
		records = append(records, historyRecord{
			ID:        row.ID,
			ArtName:   row.ArtName,
			ArtStyle:  row.ArtStyle,
			Region:    row.Region,
			Question:  pointerStringOrEmpty(row.Question),
			English:   row.English,
			Langs:     translations,
			CreatedAt: formatUTCTimestamp(row.CreatedAt),
		})
	}
	return records
}

func translatedLanguages(row db.Artwork) string {
	out := ""
	for _, lang := range language.Supported() {
		if row.Translation(lang) == nil {
			continue
		}
		if out != "" {
			out += ","
		}
		out += string(lang)
	}
	return out
}
