package config

import (
	"path/filepath"
)

const (
	RawSnapshotName       = "healthcare_raw.parquet"
	ValidatedSnapshotName = "healthcare_validated.parquet"
)

// Paths holds the filesystem locations shared by the pipeline stages.
type Paths struct {
	RawCSV        string `yaml:"raw_csv"`
	ProcessedDir  string `yaml:"processed_dir"`
	MonitoringDir string `yaml:"monitoring_dir"`
	ArtifactsDir  string `yaml:"artifacts_dir"`
}

func DefaultPaths(root string) Paths {
	return Paths{
		RawCSV:        filepath.Join(root, "data", "raw", "Healthcare.csv"),
		ProcessedDir:  filepath.Join(root, "data", "processed"),
		MonitoringDir: filepath.Join(root, "data", "monitoring"),
		ArtifactsDir:  filepath.Join(root, "artifacts"),
	}
}

func (obj Paths) RawSnapshotPath() string {
	return filepath.Join(obj.ProcessedDir, RawSnapshotName)
}

func (obj Paths) ValidatedSnapshotPath() string {
	return filepath.Join(obj.ProcessedDir, ValidatedSnapshotName)
}

// resolve makes every relative path absolute against root
func (obj Paths) resolve(root string) Paths {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	return Paths{
		RawCSV:        abs(obj.RawCSV),
		ProcessedDir:  abs(obj.ProcessedDir),
		MonitoringDir: abs(obj.MonitoringDir),
		ArtifactsDir:  abs(obj.ArtifactsDir),
	}
}
