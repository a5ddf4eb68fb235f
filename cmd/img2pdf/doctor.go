package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string    `json:"status"` // "ready", "warnings", "errors"
	Destination destInfo  `json:"destination"`
	Cache       cacheInfo `json:"cache"`
	Config      confInfo  `json:"config"`
	System      sysInfo   `json:"system"`
	Warnings    []string  `json:"warnings,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
}

// destInfo holds output destination check results.
type destInfo struct {
	Path     string `json:"path"`
	Writable bool   `json:"writable"`
}

// cacheInfo holds payload cache check results.
type cacheInfo struct {
	Configured bool   `json:"configured"`
	URL        string `json:"url,omitempty"`
	Reachable  bool   `json:"reachable"`
}

// confInfo holds configuration file check results.
type confInfo struct {
	Named  bool   `json:"named"`
	Path   string `json:"path,omitempty"`
	Loaded bool   `json:"loaded"`
}

// sysInfo holds runtime check results.
type sysInfo struct {
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	MaxProcs int    `json:"gomaxprocs"`
	Workers  int    `json:"workers"`
}

// runDoctorCmd verifies the environment a run would need: destination
// writable, config parseable, cache reachable. Exit codes: 0 = OK
// (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	output := fs.StringP("output", "o", defaultOutput, "destination to probe")
	cacheURL := fs.String("cache-url", "", "redis URL to probe")
	configName := fs.StringP("config", "c", "", "config file name or path")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	result := runDoctor(ctx, *output, *cacheURL, *configName)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, output, cacheURL, configName string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: sysInfo{
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			MaxProcs: runtime.GOMAXPROCS(0),
			Workers:  img2pdf.ResolveWorkers(0),
		},
	}

	checkConfig(result, configName, &cacheURL, &output)
	checkDestination(ctx, result, output)
	checkCache(ctx, result, cacheURL)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads the named config and lets it contribute the cache
// URL and destination when the flags left them at their defaults.
func checkConfig(result *doctorResult, name string, cacheURL, output *string) {
	if name == "" {
		return
	}
	result.Config.Named = true
	result.Config.Path = name

	cfg, err := config.LoadConfig(name)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config not usable: %v", err))
		return
	}
	result.Config.Loaded = true

	if *cacheURL == "" && cfg.Cache.Enabled {
		*cacheURL = cfg.Cache.RedisURL
	}
	if *output == defaultOutput && cfg.Output.Destination != "" {
		*output = cfg.Output.Destination
	}
}

// checkDestination probes the output destination with a write the way a
// run would before admitting work.
func checkDestination(ctx context.Context, result *doctorResult, output string) {
	result.Destination.Path = output

	bucket, err := openBucket(ctx, output)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Destination not usable: %v", err))
		return
	}
	defer bucket.Close()

	const key = ".img2pdf-doctor"
	if err := writeBucketFile(ctx, bucket, key, "application/octet-stream", "probe"); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Destination not writable: %v", err))
		return
	}
	_ = bucket.Delete(ctx, key)
	result.Destination.Writable = true
}

// checkCache pings the Redis payload cache when one is configured.
func checkCache(ctx context.Context, result *doctorResult, cacheURL string) {
	if cacheURL == "" {
		return
	}
	result.Cache.Configured = true
	result.Cache.URL = cacheURL

	opt, err := redis.ParseURL(cacheURL)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cache URL invalid: %v", err))
		return
	}

	client := redis.NewClient(opt)
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Cache unreachable (runs fall back to direct downloads): %v", err))
		return
	}
	result.Cache.Reachable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "img2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Destination")
	if r.Destination.Writable {
		fmt.Fprintf(w, "  [OK] %s: writable\n", r.Destination.Path)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s: not writable\n", r.Destination.Path)
	}
	fmt.Fprintln(w)

	if r.Config.Named {
		fmt.Fprintln(w, "Config")
		if r.Config.Loaded {
			fmt.Fprintf(w, "  [OK] %s: parsed and valid\n", r.Config.Path)
		} else {
			fmt.Fprintf(w, "  [ERROR] %s: not usable\n", r.Config.Path)
		}
		fmt.Fprintln(w)
	}

	if r.Cache.Configured {
		fmt.Fprintln(w, "Cache")
		if r.Cache.Reachable {
			fmt.Fprintf(w, "  [OK] %s: reachable\n", r.Cache.URL)
		} else {
			fmt.Fprintf(w, "  [WARN] %s: unreachable\n", r.Cache.URL)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d, conversion workers: %d\n", r.System.MaxProcs, r.System.Workers)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
