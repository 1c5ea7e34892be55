package casjobs

import (
	"net/http"
	"os"
	path "path/filepath"
	"strings"
	"time"

	toml "github.com/BurntSushi/toml"
)

// Environment variables consulted when credentials are not passed
// explicitly.
const (
	envUsername = "CASJOBS_USERID"
	envWSID     = "CASJOBS_WSID"
	envPassword = "CASJOBS_PW"
)

// Defaults for the MAST CasJobs installation. WSIDURL and FastURL are
// filled in only when the base URL points at a mastweb host, since the
// accelerated bulk endpoint is a MAST-only extension.
const (
	defaultBaseURL = "https://mastweb.stsci.edu/ps1casjobs/services/jobs.asmx"
	defaultWSIDURL = "https://mastweb.stsci.edu/ps1casjobs/casusers.asmx/GetWebServiceId"
	defaultFastURL = "https://ps1images.stsci.edu/cgi-bin/quick_casjobs.cgi"

	defaultContext      = "PanSTARRS_DR1"
	defaultUploadLimit  = 32 << 20
	defaultPollInterval = 5 * time.Second
)

// Contexts lists some common MAST database contexts.
var Contexts = []string{
	"GAIA_DR1",
	"GALEX_Catalogs",
	"GALEX_GR6Plus7",
	"GALEX_UV_BKGD",
	"HLSP_47Tuc",
	"HSLP_GSWLC",
	"HSCv3",
	"HSCv2",
	"HSCv1",
	"Kepler",
	"PanSTARRS_DR1",
	"PanSTARRS_DR2",
	"PHATv2",
	"SDSS_DR12",
}

// Config holds the parameters for a CasJobs client.
type Config struct {
	Username string // CasJobs user name
	Password string // CasJobs password
	WSID     string // numeric web-service identifier; ignored when Username is set

	Context string // default query context
	BaseURL string // jobs service endpoint
	WSIDURL string // username/password to WSID resolution endpoint
	FastURL string // accelerated bulk download endpoint (MAST only)

	UploadLimit    int           // serialized payload size limit for a single upload call
	PollInterval   time.Duration // delay between output job status checks
	RequestTimeout time.Duration // per-request timeout; zero means no timeout

	DisableSecureStorage bool // skip the OS keyring WSID cache

	Client *http.Client // optional custom HTTP client
}

// resolveCredentials applies the credential fallback chain once, before
// any network I/O: explicit Username, explicit WSID, CASJOBS_USERID,
// CASJOBS_WSID. The password comes from the parameter or CASJOBS_PW.
func resolveCredentials(cfg *Config) error {
	if cfg.Username == "" && cfg.WSID == "" {
		cfg.Username = os.Getenv(envUsername)
		if cfg.Username == "" {
			cfg.WSID = os.Getenv(envWSID)
		}
	}
	if cfg.Username == "" && cfg.WSID == "" {
		return ErrMissingIdentity
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv(envPassword)
		if cfg.Password == "" {
			return ErrMissingPassword
		}
	}
	return nil
}

// fillMissingConfigParameters applies defaults for anything the caller
// left unset.
func fillMissingConfigParameters(cfg *Config) {
	if cfg.Context == "" {
		cfg.Context = defaultContext
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.Contains(strings.ToLower(cfg.BaseURL), "//mastweb.stsci.edu/") {
		if cfg.WSIDURL == "" {
			cfg.WSIDURL = defaultWSIDURL
		}
		if cfg.FastURL == "" {
			cfg.FastURL = defaultFastURL
		}
	}
	if cfg.UploadLimit == 0 {
		cfg.UploadLimit = defaultUploadLimit
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
}

type tomlClientConfig struct {
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	WSID         string `toml:"wsid"`
	Context      string `toml:"context"`
	BaseURL      string `toml:"base_url"`
	WSIDURL      string `toml:"wsid_url"`
	FastURL      string `toml:"fast_url"`
	UploadLimit  int    `toml:"upload_limit"`
	PollInterval string `toml:"poll_interval"`
}

// LoadClientConfig returns a Config loaded from casjobs.toml. The file is
// looked up in CASJOBS_HOME when set, otherwise in $HOME/.casjobs.
func LoadClientConfig() (*Config, error) {
	dir := os.Getenv("CASJOBS_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = path.Join(home, ".casjobs")
	}
	tomlFilePath := path.Join(dir, "casjobs.toml")
	var tc tomlClientConfig
	if _, err := toml.DecodeFile(tomlFilePath, &tc); err != nil {
		return nil, &CasJobsError{
			Number:      ErrCodeClientConfig,
			Message:     "failed to parse %v: %v",
			MessageArgs: []interface{}{tomlFilePath, err},
		}
	}
	cfg := &Config{
		Username:    tc.Username,
		Password:    tc.Password,
		WSID:        tc.WSID,
		Context:     tc.Context,
		BaseURL:     tc.BaseURL,
		WSIDURL:     tc.WSIDURL,
		FastURL:     tc.FastURL,
		UploadLimit: tc.UploadLimit,
	}
	if tc.PollInterval != "" {
		interval, err := time.ParseDuration(tc.PollInterval)
		if err != nil {
			return nil, &CasJobsError{
				Number:      ErrCodeClientConfig,
				Message:     "failed to parse poll_interval %q: %v",
				MessageArgs: []interface{}{tc.PollInterval, err},
			}
		}
		cfg.PollInterval = interval
	}
	return cfg, nil
}
