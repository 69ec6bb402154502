package semgrep

import "time"

// SCM provider types accepted by the configs API.
const (
	ScmTypeGithub             = "SCM_TYPE_GITHUB"
	ScmTypeGithubEnterprise   = "SCM_TYPE_GITHUB_ENTERPRISE"
	ScmTypeGitlab             = "SCM_TYPE_GITLAB"
	ScmTypeGitlabSelfManaged  = "SCM_TYPE_GITLAB_SELFMANAGED"
	ScmTypeBitbucket          = "SCM_TYPE_BITBUCKET"
	ScmTypeBitbucketDC        = "SCM_TYPE_BITBUCKET_DATACENTER"
	ScmTypeAzureDevops        = "SCM_TYPE_AZURE_DEVOPS"
	ScmTypeUnknown            = "SCM_TYPE_UNKNOWN"
)

// Scan statuses and types used when querying project scan history.
const (
	ScanStatusRunning   = "SCAN_STATUS_RUNNING"
	ScanStatusCompleted = "SCAN_STATUS_COMPLETED"
	ScanStatusFailed    = "SCAN_STATUS_FAILED"

	ScanTypeFull = "SCAN_TYPE_FULL"
	ScanTypeDiff = "SCAN_TYPE_DIFF"
)

// Deployment identifies the Semgrep deployment the token belongs to.
type Deployment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name,omitempty"`
}

// Status is the last recorded connectivity result for an SCM config. OK
// means the service could reach the SCM server with the stored credential.
type Status struct {
	Checked *time.Time `json:"checked,omitempty"`
	OK      bool       `json:"ok"`
	Error   string     `json:"error,omitempty"`
}

// TokenScopes is the closed set of permission bits reported for a stored
// credential.
type TokenScopes struct {
	ReadMetadata            bool `json:"readMetadata"`
	ReadPullRequest         bool `json:"readPullRequest"`
	WritePullRequestComment bool `json:"writePullRequestComment"`
	ReadContents            bool `json:"readContents"`
	ReadMembers             bool `json:"readMembers"`
	ManageWebhooks          bool `json:"manageWebhooks"`
	WriteContents           bool `json:"writeContents"`
}

// Config is a configured link between the Semgrep deployment and one SCM
// namespace. Duplicate configs for the same (baseUrl, namespace) pair are
// possible upstream and must be handled as a set, never assumed unique.
type Config struct {
	ID                   string       `json:"id"`
	Type                 string       `json:"type"`
	Namespace            string       `json:"namespace"`
	SourceID             string       `json:"sourceId,omitempty"`
	BaseURL              string       `json:"baseUrl,omitempty"`
	Status               *Status      `json:"status,omitempty"`
	Installed            bool         `json:"installed"`
	Suspended            bool         `json:"suspended"`
	AutoScan             bool         `json:"autoScan"`
	UseNetworkBroker     bool         `json:"useNetworkBroker"`
	TokenScopes          *TokenScopes `json:"tokenScopes,omitempty"`
	LastSuccessfulSyncAt *time.Time   `json:"lastSuccessfulSyncAt,omitempty"`
	ScmID                string       `json:"scmId,omitempty"`
}

// CheckResult is the response of a connectivity check for one config. Token
// scopes are only present when the server was reachable and reported them.
type CheckResult struct {
	Status      Status       `json:"status"`
	TokenScopes *TokenScopes `json:"tokenScopes,omitempty"`
}

// Repository is a repository known to the Semgrep deployment.
type Repository struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Archived bool   `json:"archived"`
	IsSetup  bool   `json:"isSetup"`
}

// Scan is one triggered or historical scan of a project.
type Scan struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Type        string     `json:"type"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
