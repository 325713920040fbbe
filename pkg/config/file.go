package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pixgonz/pixgonz/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	ListenAddress: ptr.To("127.0.0.1:5000"),
	HistoryDir:    ptr.To("tmp_history"),
	// Sessions untouched for a day are garbage.
	HistoryMaxAgeHours:   ptr.To(24),
	HistoryPruneSchedule: ptr.To("@every 1h"),
	MaxUploadMB:          ptr.To(32),
}

var _ Config = &File{}

// File is a JSON file backed Config.
type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// RawFileConfig is the on-disk representation. Pointer fields distinguish
// "absent, use default" from an explicit zero.
type RawFileConfig struct {
	ListenAddress        *string `json:"listenAddress,omitempty"`
	HistoryDir           *string `json:"historyDir,omitempty"`
	HistoryMaxAgeHours   *int    `json:"historyMaxAgeHours,omitempty"`
	HistoryPruneSchedule *string `json:"historyPruneSchedule,omitempty"`
	MaxUploadMB          *int    `json:"maxUploadMB,omitempty"`
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}
	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

func (f *File) ListenAddress() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.ListenAddress != nil {
		return *f.c.ListenAddress
	}
	return *defaultFileConfig.ListenAddress
}

func (f *File) SetListenAddress(addr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ListenAddress = &addr
}

func (f *File) HistoryDir() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.HistoryDir != nil {
		return *f.c.HistoryDir
	}
	return *defaultFileConfig.HistoryDir
}

func (f *File) HistoryMaxAge() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()

	hours := *defaultFileConfig.HistoryMaxAgeHours
	if f.c.HistoryMaxAgeHours != nil {
		hours = *f.c.HistoryMaxAgeHours
	}
	return time.Duration(hours) * time.Hour
}

func (f *File) HistoryPruneSchedule() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.HistoryPruneSchedule != nil {
		return *f.c.HistoryPruneSchedule
	}
	return *defaultFileConfig.HistoryPruneSchedule
}

func (f *File) MaxUploadBytes() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	mb := *defaultFileConfig.MaxUploadMB
	if f.c.MaxUploadMB != nil {
		mb = *f.c.MaxUploadMB
	}
	return int64(mb) << 20
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file means all defaults. Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}
	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	if err := json.Unmarshal(b, &conf); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	b, err := json.MarshalIndent(f.c, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(f.filepath, b, 0o644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write config to %s", f.filepath)
	}
	return nil
}

func (f *File) LogrusFields() map[string]interface{} {
	return map[string]interface{}{
		"listenAddress":        f.ListenAddress(),
		"historyDir":           f.HistoryDir(),
		"historyMaxAge":        f.HistoryMaxAge().String(),
		"historyPruneSchedule": f.HistoryPruneSchedule(),
		"maxUploadBytes":       f.MaxUploadBytes(),
	}
}
