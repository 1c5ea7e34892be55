package casjobs

import (
	"context"
	"net/url"
	"strings"
)

// getWSID resolves the numeric web-service identifier for the
// configured username/password pair. An empty or "-1" response means the
// service rejected the credentials. Successful lookups are cached in the
// OS keyring so repeated client constructions skip the round trip.
func (cj *CasJobs) getWSID(ctx context.Context) (string, error) {
	if cj.cfg.WSIDURL == "" {
		return "", ErrMissingWSIDURL
	}
	cacheKey := wsidCacheKey(cj.cfg.WSIDURL, cj.cfg.Username)
	if !cj.cfg.DisableSecureStorage {
		if wsid := credentialsStorage.getCredential(cacheKey); wsid != "" {
			logger.Debugf("using cached WSID for user %v", cj.cfg.Username)
			return wsid, nil
		}
	}

	data := url.Values{}
	data.Set("userid", cj.cfg.Username)
	data.Set("password", cj.cfg.Password)
	body, status, err := cj.rest.postForm(ctx, cj.cfg.WSIDURL, data)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", transportError(status, cj.cfg.WSIDURL)
	}
	text, err := xmlInnerText(body)
	if err != nil {
		return "", err
	}
	wsid := strings.TrimSpace(text)
	if wsid == "" || wsid == "-1" {
		if !cj.cfg.DisableSecureStorage {
			credentialsStorage.deleteCredential(cacheKey)
		}
		return "", ErrAuthFailed
	}
	if !cj.cfg.DisableSecureStorage {
		credentialsStorage.setCredential(cacheKey, wsid)
	}
	return wsid, nil
}
