// Package main implements the build tool for the navdata-interface host
// harness: verifying the toolchain, driving wails for the embeddable
// binary, and packaging a release artifact that pairs the built binary
// with the bundled navigation-data cycle the addon ships alongside it.
// Usage: go run cmd/builder/main.go [build|release|bundle-cycle|verify-cycle|check]
package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/navigraph/navdata-interface/internal/cycle"
)

const (
	appName    = "Navigraph"
	appVersion = "1.0.0" // TODO: Read from version file

	// cycleDateLayout matches cycle.FromToPair's DD-MM-YYYY rendering.
	cycleDateLayout = "02-01-2006"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	rest := os.Args[2:]

	switch command {
	case "check":
		runCheck()
	case "build":
		runBuild()
	case "release":
		runRelease(rest)
	case "bundle-cycle":
		runBundleCycle(rest)
	case "verify-cycle":
		runVerifyCycle(rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`
Navigraph Build System
=====================

Usage: go run cmd/builder/main.go <command> [args]

Commands:
  check                     Verify all required tools are installed
  build                     Build the host harness for the current platform
  release <bundled-dir>     Build release packages for all platforms, each
                            paired with the navigation-data cycle in
                            <bundled-dir>
  bundle-cycle <dir> <out>  Zip a prepared navigation-data directory (an
                            active database plus its ng_cycle.json sidecar)
                            into a distributable addon asset
  verify-cycle <dir>        Read <dir>/ng_cycle.json and report whether the
                            cycle it names has expired
  help                      Show this help message

Examples:
  go run cmd/builder/main.go check
  go run cmd/builder/main.go build
  go run cmd/builder/main.go verify-cycle ./bundled
  go run cmd/builder/main.go release ./bundled
`)
}

// runCheck verifies all required tools are installed
func runCheck() {
	fmt.Println("🔍 Checking required tools...")

	tools := []struct {
		name  string
		check string
		args  []string
	}{
		{"go", "go", []string{"version"}},
		{"wails", "wails", []string{"version"}},
		{"node", "node", []string{"--version"}},
		{"npm", "npm", []string{"--version"}},
	}

	allFound := true
	for _, tool := range tools {
		cmd := exec.Command(tool.check, tool.args...)
		output, err := cmd.Output()
		if err != nil {
			fmt.Printf("❌ CRITICAL: %s is missing or not in PATH\n", tool.name)
			allFound = false
		} else {
			version := strings.TrimSpace(string(output))
			if len(version) > 50 {
				version = version[:50] + "..."
			}
			fmt.Printf("✅ %s: %s\n", tool.name, version)
		}
	}

	if !allFound {
		fmt.Println("\n⚠️  Some required tools are missing. Please install them and try again.")
		os.Exit(1)
	}

	fmt.Println("\n✅ All tools verified!")
}

// runBuild builds the host harness for the current platform
func runBuild() {
	runCheck()

	fmt.Printf("\n🔨 Building for %s/%s...\n", runtime.GOOS, runtime.GOARCH)

	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)

	args := []string{"build", "-platform", platform}

	// Add NSIS for Windows installer
	if runtime.GOOS == "windows" {
		args = append(args, "-nsis")
	}

	cmd := exec.Command("wails", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ Build failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Build completed successfully!")
	printBuildArtifacts()
}

// runRelease builds release packages for all platforms, then pairs each
// one with the navigation-data cycle bundled from bundledDir so the
// release artifact matches what the addon actually ships: a host binary
// that never runs without a bundled database to fall back on (SPEC_FULL
// §6's GetNavigationDataInstallStatus contract).
func runRelease(args []string) {
	if len(args) < 1 {
		fmt.Println("❌ release requires a bundled navigation-data directory")
		fmt.Println("   Usage: go run cmd/builder/main.go release <bundled-dir>")
		os.Exit(1)
	}
	bundledDir := args[0]

	if expired, desc, err := cycleExpired(bundledDir); err != nil {
		fmt.Printf("⚠️  Could not read bundled cycle: %v\n", err)
	} else if expired {
		fmt.Printf("⚠️  Bundled cycle %s expired %s — releasing a stale database\n", desc.Cycle, desc.ValidityPeriod)
	}

	runCheck()

	fmt.Println("\n📦 Building release packages...")

	platforms := []struct {
		goos   string
		goarch string
		nsis   bool
	}{
		{"windows", "amd64", true},
		{"darwin", "universal", false},
		{"linux", "amd64", false},
	}

	buildDir := "build/release"
	os.MkdirAll(buildDir, 0755)

	for _, p := range platforms {
		if runtime.GOOS != p.goos && p.goos != "darwin" {
			fmt.Printf("⚠️  Skipping %s/%s (cross-compile not supported for GUI apps)\n", p.goos, p.goarch)
			continue
		}

		fmt.Printf("\n🔨 Building for %s/%s...\n", p.goos, p.goarch)

		wailsArgs := []string{"build", "-platform", fmt.Sprintf("%s/%s", p.goos, p.goarch)}

		if p.nsis {
			wailsArgs = append(wailsArgs, "-nsis")
		}

		cmd := exec.Command("wails", wailsArgs...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			fmt.Printf("❌ Build failed for %s/%s: %v\n", p.goos, p.goarch, err)
			continue
		}

		if err := packageRelease(p.goos, p.goarch, buildDir, bundledDir); err != nil {
			fmt.Printf("⚠️  Packaging failed: %v\n", err)
		}
	}

	fmt.Println("\n✅ Release build completed!")
	fmt.Printf("📁 Artifacts in: %s\n", buildDir)
}

// packageRelease zips the platform's wails binary together with the
// bundled navigation-data directory into a single release archive,
// instead of shipping the binary bare: a host harness with no bundled
// cycle can't answer GetNavigationDataInstallStatus until its first
// download completes, which isn't the experience the addon ships.
func packageRelease(goos, goarch, buildDir, bundledDir string) error {
	wailsBuildDir := "build/bin"

	var binaryPath string
	switch goos {
	case "windows":
		matches, _ := filepath.Glob(filepath.Join(wailsBuildDir, "*-amd64-installer.exe"))
		if len(matches) == 0 {
			matches, _ = filepath.Glob(filepath.Join(wailsBuildDir, "*.exe"))
		}
		if len(matches) > 0 {
			binaryPath = matches[0]
		}
	case "darwin":
		matches, _ := filepath.Glob(filepath.Join(wailsBuildDir, "*.app"))
		if len(matches) > 0 {
			binaryPath = matches[0]
		}
	case "linux":
		candidate := filepath.Join(wailsBuildDir, appName)
		if _, err := os.Stat(candidate); err == nil {
			binaryPath = candidate
		}
	}

	if binaryPath == "" {
		return fmt.Errorf("no build artifact found for %s/%s in %s", goos, goarch, wailsBuildDir)
	}

	archivePath := filepath.Join(buildDir, fmt.Sprintf("%s-v%s-%s-%s.zip", appName, appVersion, goos, goarch))
	return zipReleaseArtifact(archivePath, binaryPath, bundledDir)
}

// zipReleaseArtifact writes binaryPath under "bin/" and everything under
// bundledDir under "bundled-navdata/" into a single release zip.
func zipReleaseArtifact(archivePath, binaryPath, bundledDir string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	if err := addToZip(w, binaryPath, filepath.Join("bin", filepath.Base(binaryPath))); err != nil {
		return fmt.Errorf("add binary: %w", err)
	}

	if _, err := os.Stat(bundledDir); err == nil {
		if err := filepath.Walk(bundledDir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			rel, err := filepath.Rel(bundledDir, path)
			if err != nil {
				return err
			}
			return addToZip(w, path, filepath.Join("bundled-navdata", rel))
		}); err != nil {
			return fmt.Errorf("add bundled navigation data: %w", err)
		}
	}

	return nil
}

func addToZip(w *zip.Writer, src, nameInArchive string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = nameInArchive
	header.Method = zip.Deflate

	if info.IsDir() {
		return nil
	}

	writer, err := w.CreateHeader(header)
	if err != nil {
		return err
	}

	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(writer, file)
	return err
}

// runBundleCycle zips a prepared navigation-data directory (an active
// database plus ng_cycle.json) into a standalone addon asset, the unit
// distributed independently of a host binary release when only the
// database needs refreshing.
func runBundleCycle(args []string) {
	if len(args) < 2 {
		fmt.Println("❌ bundle-cycle requires a source directory and an output zip path")
		fmt.Println("   Usage: go run cmd/builder/main.go bundle-cycle <dir> <out.zip>")
		os.Exit(1)
	}
	dir, out := args[0], args[1]

	if _, desc, err := cycleExpired(dir); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	} else {
		fmt.Printf("📦 Bundling cycle %s (%s)\n", desc.Cycle, desc.ValidityPeriod)
	}

	f, err := os.Create(out)
	if err != nil {
		fmt.Printf("❌ create archive: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addToZip(w, path, rel)
	})
	if err != nil {
		fmt.Printf("❌ bundle failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Wrote %s\n", out)
}

// runVerifyCycle reports a bundled navigation-data directory's cycle
// metadata and whether its validity window has already lapsed, so a
// release isn't cut with a database addon's own download would
// immediately flag as out of date.
func runVerifyCycle(args []string) {
	if len(args) < 1 {
		fmt.Println("❌ verify-cycle requires a navigation-data directory")
		fmt.Println("   Usage: go run cmd/builder/main.go verify-cycle <dir>")
		os.Exit(1)
	}

	expired, desc, err := cycleExpired(args[0])
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Cycle:     %s\n", desc.Cycle)
	fmt.Printf("Format:    %s\n", desc.Format)
	fmt.Printf("Validity:  %s\n", desc.ValidityPeriod)
	if expired {
		fmt.Println("Status:    ⚠️  expired")
		os.Exit(1)
	}
	fmt.Println("Status:    ✅ current")
}

// cycleExpired loads dir/ng_cycle.json and reports whether "now" is past
// the cycle's effective-to date.
func cycleExpired(dir string) (bool, *cycle.Descriptor, error) {
	desc, err := cycle.Load(filepath.Join(dir, "ng_cycle.json"))
	if err != nil {
		return false, nil, fmt.Errorf("read cycle descriptor: %w", err)
	}
	if desc == nil {
		return false, nil, fmt.Errorf("no ng_cycle.json found in %s", dir)
	}

	parts := strings.SplitN(desc.ValidityPeriod, "/", 2)
	if len(parts) != 2 {
		return false, desc, fmt.Errorf("malformed validity period %q", desc.ValidityPeriod)
	}

	to, err := time.Parse(cycleDateLayout, parts[1])
	if err != nil {
		return false, desc, fmt.Errorf("parse effective-to date: %w", err)
	}

	return time.Now().After(to), desc, nil
}

// printBuildArtifacts lists files in build/bin
func printBuildArtifacts() {
	fmt.Println("\n📁 Build artifacts:")
	filepath.Walk("build/bin", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size := float64(info.Size()) / (1024 * 1024)
			fmt.Printf("   %s (%.1f MB)\n", path, size)
		}
		return nil
	})
}
