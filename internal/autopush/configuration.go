package autopush

const (
	// DefaultRemoteName is the remote pushed to when no remote is configured.
	DefaultRemoteName = "origin"

	// DefaultBranchName is the fallback branch when the repository reports no current branch.
	DefaultBranchName = "main"

	defaultRepositoryPathConstant = "."
	recentCommitCountConstant     = 5
)

// Configuration captures the push command settings sourced from configuration files and flags.
type Configuration struct {
	RepositoryPath      string `mapstructure:"repository"`
	RemoteName          string `mapstructure:"remote"`
	BranchName          string `mapstructure:"branch"`
	CommitMessage       string `mapstructure:"message"`
	VersionFileName     string `mapstructure:"version_file"`
	JournalFileName     string `mapstructure:"journal_file"`
	ReportDirectoryName string `mapstructure:"report_directory"`
}

// DefaultConfiguration returns the push command defaults.
func DefaultConfiguration() Configuration {
	return Configuration{
		RepositoryPath: defaultRepositoryPathConstant,
		RemoteName:     DefaultRemoteName,
		BranchName:     DefaultBranchName,
	}
}
