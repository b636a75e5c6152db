package sync_checker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type SlackSyncNotifier struct {
	webhookUrl url.URL
	masterSite string
	slaveSite  string
	client     *http.Client
}

func NewSlackSyncNotifier(webhookUrl url.URL, masterSite string, slaveSite string) *SlackSyncNotifier {
	return &SlackSyncNotifier{
		webhookUrl: webhookUrl,
		masterSite: masterSite,
		slaveSite:  slaveSite,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts a summary to the webhook. OK results are not sent.
func (s SlackSyncNotifier) Notify(result CheckResult) error {
	if result.State == StateOK {
		return nil
	}

	jsonFields := map[string]interface{}{
		"text":     s.text(result),
		"username": fmt.Sprintf("gitweb sync check: %s", s.slaveSite),
	}
	body, err := json.Marshal(jsonFields)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.webhookUrl.String(), "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	defer (func() {
		_ = resp.Body.Close()
	})()

	if resp.StatusCode != http.StatusOK {
		return errors.New("unexpected status code: " + resp.Status)
	}

	return nil
}

func (s SlackSyncNotifier) text(result CheckResult) string {
	var b strings.Builder

	if result.State == StateUnknown {
		fmt.Fprintf(&b, "%s: could not check whether %s is in sync with %s\n", result.State, s.slaveSite, s.masterSite)
		fmt.Fprintf(&b, "The check could not complete: %v\n", result.Err)
		return b.String()
	}

	fmt.Fprintf(&b, "%s: %s is out of sync with %s\n", result.State, s.slaveSite, s.masterSite)
	fmt.Fprintf(&b, "Repos not in sync: %d (warning above %d, critical above %d)\n",
		len(result.Report), result.Thresholds.Warn, result.Thresholds.Crit)
	for _, repo := range result.Unsynced() {
		fmt.Fprintf(&b, "• %s (skew %s)\n", repo, result.Report[repo])
	}

	if len(result.Added) > 0 {
		fmt.Fprintf(&b, "Repos missing from the slave: %d\n", len(result.Added))
	}

	return b.String()
}
