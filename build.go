//go:build ignore

// build.go - tripreport build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	binary    = "tripreport"
	sourceDir = "./cmd/tripreport"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// release platforms
	platforms = [][2]string{
		{"linux", "amd64"},
		{"linux", "arm64"},
		{"darwin", "arm64"},
		{"windows", "amd64"},
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")
}

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
	}

	switch *target {
	case "build":
		buildBinary(ctx)
	case "test":
		runTests(ctx.Verbose)
	case "clean":
		clean()
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Done in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        tripreport - Build System          " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func outputName(ctx *BuildContext, withPlatform bool) string {
	name := binary
	if withPlatform {
		name = fmt.Sprintf("%s-%s-%s", binary, ctx.GOOS, ctx.GOARCH)
	}
	if ctx.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

func buildBinary(ctx *BuildContext) {
	build(ctx, filepath.Join(distDir, outputName(ctx, false)))
}

func build(ctx *BuildContext, outputPath string) {
	printInfo(fmt.Sprintf("Building %s for %s/%s...", binary, ctx.GOOS, ctx.GOARCH))

	ldflags := fmt.Sprintf("-s -w -X tripreport/pkg/contracts.BuildTime=%s -X tripreport/pkg/contracts.GitCommit=%s",
		time.Now().UTC().Format(time.RFC3339), gitCommit())
	args := []string{"build", "-trimpath", "-ldflags", ldflags, "-o", outputPath, sourceDir}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", binary, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", filepath.Base(outputPath), sizeMB))
	}
}

// gitCommit returns the short commit hash, or "unknown" outside a checkout
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		return
	}
	printSuccess("Build artifacts cleaned")
}

// buildRelease cross-compiles every release platform into dist/
func buildRelease(ctx *BuildContext) {
	printInfo("Building release binaries...")
	clean()

	for _, p := range platforms {
		pctx := &BuildContext{Verbose: ctx.Verbose, GOOS: p[0], GOARCH: p[1]}
		build(pctx, filepath.Join(distDir, outputName(pctx, true)))
	}

	example := filepath.Join(rootDir, "configs", "tripreport.example.yaml")
	if _, err := os.Stat(example); err == nil {
		data, err := os.ReadFile(example)
		if err == nil {
			err = os.WriteFile(filepath.Join(distDir, "tripreport.example.yaml"), data, 0644)
		}
		if err != nil {
			printWarning(fmt.Sprintf("Could not copy example config: %v", err))
		}
	}

	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  build    Build tripreport for the host platform into dist/")
	fmt.Println("  test     Run all Go tests with the race detector")
	fmt.Println("  clean    Remove dist/")
	fmt.Println("  release  Cross-compile release binaries into dist/")
}
