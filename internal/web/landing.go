package web

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

const indexFileEnvKey = "WORDJOBS_INDEX_FILE"

//go:embed static/index.html
var embeddedIndex []byte

// LoadLandingPage returns the landing page served on "/".
//
// The first readable file among configured, $WORDJOBS_INDEX_FILE and
// html/index.html next to the executable or the working directory wins,
// otherwise the embedded page is used.
func LoadLandingPage(logger logSDK.Logger, configured string) []byte {
	for _, candidate := range landingCandidates(configured) {
		page, err := os.ReadFile(candidate)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("read landing page", zap.Error(err), zap.String("path", candidate))
			}
			continue
		}

		logger.Info("landing page located", zap.String("path", candidate))
		return page
	}

	logger.Debug("use embedded landing page")
	return embeddedIndex
}

func landingCandidates(configured string) []string {
	var candidates []string
	if configured = strings.TrimSpace(configured); configured != "" {
		candidates = append(candidates, configured)
	}
	if override := strings.TrimSpace(os.Getenv(indexFileEnvKey)); override != "" {
		candidates = append(candidates, override)
	}
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), "html", "index.html"))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "html", "index.html"))
	}
	return candidates
}
