package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	stripcomposer "github.com/menta2k/strip-composer"
	"github.com/menta2k/strip-composer/internal/config"
	"github.com/menta2k/strip-composer/internal/utils"
	"github.com/menta2k/strip-composer/pkg/compose"
	"github.com/menta2k/strip-composer/pkg/facedetect"
	"github.com/menta2k/strip-composer/pkg/processing"
	"github.com/menta2k/strip-composer/pkg/quality"
)

func main() {
	var configPath, outDir, prefix, ext string
	var backend, url, model string
	var exportQ int
	var lossless bool
	var sendFmt string
	var sendSize int
	var sendQ int
	var debug bool

	// Debug overlay format (separate from export ext)
	var dbgext string
	var dbgquality int
	var dbglossless bool

	cfg := config.Default()

	flag.StringVar(&configPath, "config", "", "config file path (JSON), flags override")
	flag.StringVar(&outDir, "out", cfg.Output.OutputDir, "output directory")
	flag.StringVar(&prefix, "prefix", cfg.Output.Prefix, "export filename prefix")

	flag.StringVar(&backend, "backend", cfg.Detection.Backend, "face detection backend: ollama|llamacpp|none")
	flag.StringVar(&url, "url", cfg.Detection.URL, "vision server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&model, "model", cfg.Detection.Model, "vision model name")

	flag.StringVar(&ext, "ext", cfg.Output.Format, "export format: jpg|png|webp")
	flag.IntVar(&exportQ, "quality", cfg.Output.Quality, "JPEG/WebP export quality (1-100)")
	flag.BoolVar(&lossless, "lossless", cfg.Output.Lossless, "WebP lossless export mode")

	flag.StringVar(&dbgext, "dbgext", "png", "alignment overlay format: png|jpg|webp")
	flag.IntVar(&dbgquality, "dbgquality", 92, "alignment overlay quality (for jpg/webp)")
	flag.BoolVar(&dbglossless, "dbglossless", false, "alignment overlay WebP lossless mode")

	flag.StringVar(&sendFmt, "sendfmt", cfg.Detection.SendFmt, "format sent to the vision model: jpg|png")
	flag.IntVar(&sendSize, "sendsize", cfg.Detection.SendDim, "max long side sent to the vision model (px), 0=original")
	flag.IntVar(&sendQ, "sendq", cfg.Detection.SendQ, "JPEG quality for image sent to the vision model (1-100)")

	flag.BoolVar(&debug, "debug", false, "write alignment overlay images")

	flag.Parse()

	photos := flag.Args()
	if len(photos) < 2 || len(photos) > 3 {
		log.Fatalf("usage: %s [flags] photo1 photo2 [photo3]  (2 or 3 images, paths or URLs)", filepath.Base(os.Args[0]))
	}

	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
		// Explicitly set flags still win over the file.
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "out":
				cfg.Output.OutputDir = outDir
			case "prefix":
				cfg.Output.Prefix = prefix
			case "backend":
				cfg.Detection.Backend = backend
			case "url":
				cfg.Detection.URL = url
			case "model":
				cfg.Detection.Model = model
			case "ext":
				cfg.Output.Format = ext
			case "quality":
				cfg.Output.Quality = exportQ
			case "lossless":
				cfg.Output.Lossless = lossless
			case "sendfmt":
				cfg.Detection.SendFmt = sendFmt
			case "sendsize":
				cfg.Detection.SendDim = sendSize
			case "sendq":
				cfg.Detection.SendQ = sendQ
			}
		})
	} else {
		cfg.Output.OutputDir = outDir
		cfg.Output.Prefix = prefix
		cfg.Output.Format = ext
		cfg.Output.Quality = exportQ
		cfg.Output.Lossless = lossless
		cfg.Detection.Backend = backend
		cfg.Detection.URL = url
		cfg.Detection.Model = model
		cfg.Detection.SendFmt = sendFmt
		cfg.Detection.SendDim = sendSize
		cfg.Detection.SendQ = sendQ
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Build composition parameters from config
	layout := compose.TwoWay
	if len(photos) == 3 {
		layout = compose.ThreeWay
	}

	formats := make([]compose.Format, len(cfg.Composer.Formats))
	for i, fs := range cfg.Composer.Formats {
		formats[i] = compose.Format{Width: fs.Width, Height: fs.Height, Label: fs.Label}
	}

	dividerColor, err := cfg.ParseDividerColor()
	if err != nil {
		log.Fatalf("Invalid divider color: %v", err)
	}
	divider := compose.DividerSpec{Width: cfg.Composer.DividerWidth, Color: dividerColor}

	detector := facedetect.Select(cfg.Detection.Backend, cfg.Detection.URL, cfg.Detection.Model)
	if vd, ok := detector.(*facedetect.VisionDetector); ok {
		vd.SetSendOptions(facedetect.SendOptions{
			Format:  cfg.Detection.SendFmt,
			MaxDim:  cfg.Detection.SendDim,
			Quality: cfg.Detection.SendQ,
		})
	} else if cfg.Detection.Backend != "none" && cfg.Detection.Backend != "" {
		log.Printf("backend %q unavailable, using center framing", cfg.Detection.Backend)
	}

	composer := stripcomposer.NewWithConfig(quality.Config{
		MinDimension:   cfg.Quality.MinDimension,
		BlurSampleSize: cfg.Quality.BlurSampleSize,
		BlurThreshold:  cfg.Quality.BlurThreshold,
	}, detector, layout, formats, divider)

	// Load and analyze each slot; decode failures degrade to empty panels.
	ctx := context.Background()
	for slot, source := range photos {
		if err := composer.LoadPhoto(ctx, slot, source); err != nil {
			log.Printf("slot %d: %v", slot, err)
			continue
		}
		tag, faceFound := composer.QualityTag(slot)
		if tag != "" {
			log.Printf("slot %d: %s (%s)", slot, source, tag)
		} else {
			log.Printf("slot %d: %s", slot, source)
		}
		if !faceFound {
			log.Printf("slot %d: no face found, using center framing", slot)
		}
	}

	if err := composer.Compose(); err != nil {
		log.Fatal(err)
	}
	log.Printf("shared vertical target: %.3f", composer.Session().TargetY())

	// Export every format, plus optional alignment overlays.
	processor := processing.NewProcessor()
	for f, format := range composer.Session().Formats() {
		if err := composer.SaveOutput(f, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Format, cfg.Output.Quality, cfg.Output.Lossless); err != nil {
			log.Printf("export %s failed: %v", format.Label, err)
			continue
		}
		log.Printf("wrote %s", utils.ExportFilename(cfg.Output.OutputDir, cfg.Output.Prefix, format.Label, cfg.Output.Format))

		if debug {
			out, err := composer.Output(f)
			if err != nil {
				log.Printf("overlay %s failed: %v", format.Label, err)
				continue
			}
			overlay := processor.CreateAlignmentOverlay(out, composer.Session().SlotWidth(f),
				divider.Width, layout.Panels, composer.Session().TargetY())
			dbgPath := filepath.Join(cfg.Output.OutputDir,
				fmt.Sprintf("%s_%s_overlay.%s", cfg.Output.Prefix, format.Label, strings.ToLower(dbgext)))
			if err := processor.SaveImage(overlay, dbgPath, dbgext, dbgquality, dbglossless); err != nil {
				log.Printf("overlay save failed: %v", err)
			} else {
				log.Printf("wrote %s", dbgPath)
			}
		}
	}
}
