package casjobs

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

// The WSID for a username is stable, so it is cached in the platform
// credential store where one is available. Failures here are logged and
// swallowed; the cache is an optimization, never a requirement.

type secureStorageManager interface {
	setCredential(key, value string)
	getCredential(key string) string
	deleteCredential(key string)
}

var credentialsStorage = newSecureStorageManager()

func newSecureStorageManager() secureStorageManager {
	switch runtime.GOOS {
	case "darwin", "windows":
		return &keyringSecureStorageManager{}
	default:
		return &noopSecureStorageManager{}
	}
}

func wsidCacheKey(wsidURL, username string) string {
	host := wsidURL
	if u, err := url.Parse(wsidURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return strings.ToUpper(fmt.Sprintf("%s:%s:WSID", host, username))
}

type keyringSecureStorageManager struct{}

func (ssm *keyringSecureStorageManager) open() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: "gocasjobs",
	})
}

func (ssm *keyringSecureStorageManager) setCredential(key, value string) {
	if value == "" {
		logger.Debug("no WSID provided, skipping cache write")
		return
	}
	ring, err := ssm.open()
	if err != nil {
		logger.Debugf("failed to open keyring: %v", err)
		return
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		logger.Debugf("failed to write WSID to keyring: %v", err)
	}
}

func (ssm *keyringSecureStorageManager) getCredential(key string) string {
	ring, err := ssm.open()
	if err != nil {
		logger.Debugf("failed to open keyring: %v", err)
		return ""
	}
	item, err := ring.Get(key)
	if err != nil {
		logger.Debugf("WSID not found in keyring: %v", err)
		return ""
	}
	return string(item.Data)
}

func (ssm *keyringSecureStorageManager) deleteCredential(key string) {
	ring, err := ssm.open()
	if err != nil {
		logger.Debugf("failed to open keyring: %v", err)
		return
	}
	if err := ring.Remove(key); err != nil {
		logger.Debugf("failed to delete WSID from keyring: %v", err)
	}
}

type noopSecureStorageManager struct{}

func (ssm *noopSecureStorageManager) setCredential(_, _ string) {}

func (ssm *noopSecureStorageManager) getCredential(_ string) string { return "" }

func (ssm *noopSecureStorageManager) deleteCredential(_ string) {}
