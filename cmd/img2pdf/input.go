package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-img2pdf/internal/hints"
	"github.com/alnah/go-img2pdf/internal/urlutil"
)

// Sentinel errors for input gathering.
var (
	ErrNoInput  = errors.New("no input urls")
	ErrReadList = errors.New("failed to read url list")
	ErrReadCSV  = errors.New("failed to read csv")
)

// maxLineLen caps one line of a URL list file. Longer lines are almost
// certainly not URLs and would otherwise balloon the scanner buffer.
const maxLineLen = 64 * 1024

// csvEntry is one row of a CSV export worth downloading.
type csvEntry struct {
	Filename string
	EntryID  string
	URL      string
}

// gatherURLs collects the run's URL list from positional arguments, a
// URL-per-line file, and a CSV export, in that order. CSV entries come
// back separately so the caller can write the filename map artifact.
// Lines that fail URL validation are kept: the fetcher records them as
// invalid-URL outcomes instead of silently shrinking the input.
func gatherURLs(f *convertFlags, args []string, stdin io.Reader) ([]string, []csvEntry, error) {
	urls := make([]string, 0, len(args))
	urls = append(urls, args...)

	if f.input.file != "" {
		var r io.Reader
		if f.input.file == "-" {
			r = stdin
		} else {
			file, err := os.Open(f.input.file) // #nosec G304 -- user-provided list path
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrReadList, err)
			}
			defer file.Close()
			r = file
		}
		listed, err := readURLList(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrReadList, err)
		}
		urls = append(urls, listed...)
	}

	var entries []csvEntry
	if f.input.csv != "" {
		file, err := os.Open(f.input.csv) // #nosec G304 -- user-provided csv path
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrReadCSV, err)
		}
		defer file.Close()

		entries, err = readCSVEntries(file, f.input.baseURL)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range entries {
			urls = append(urls, e.URL)
		}
	}

	if len(urls) == 0 {
		return nil, nil, fmt.Errorf("%w%s", ErrNoInput, hints.ForNoInput())
	}
	return urls, entries, nil
}

// readURLList reads one URL per line, skipping blank lines and
// #-comments. No URL validation happens here.
func readURLList(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLen)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// CSV export column names, case-insensitive.
const (
	colFilename = "FILENAME"
	colEntryID  = "FILEENTRYID"
	colPreview  = "PREVIEW_URL"
)

// readCSVEntries extracts download entries from a CSV export carrying
// FILENAME, FILEENTRYID, and PREVIEW_URL columns. Relative preview URLs
// are resolved against baseURL. Rows with an empty preview are skipped;
// rows whose URL cannot be joined keep the raw value so the run records
// them as invalid instead of dropping them.
func readCSVEntries(r io.Reader, baseURL string) ([]csvEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadCSV, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	previewIdx, ok := cols[colPreview]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s column", ErrReadCSV, colPreview)
	}
	filenameIdx := colIndex(cols, colFilename)
	entryIdx := colIndex(cols, colEntryID)

	var entries []csvEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadCSV, err)
		}

		preview := field(record, previewIdx)
		if preview == "" {
			continue
		}

		joined, err := urlutil.Join(baseURL, preview)
		if err != nil {
			joined = preview
		}
		entries = append(entries, csvEntry{
			Filename: field(record, filenameIdx),
			EntryID:  field(record, entryIdx),
			URL:      joined,
		})
	}
	return entries, nil
}

// colIndex returns the column position, or -1 when the header is absent.
func colIndex(cols map[string]int, name string) int {
	if idx, ok := cols[name]; ok {
		return idx
	}
	return -1
}

// field returns the trimmed column value, tolerating short records.
func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
