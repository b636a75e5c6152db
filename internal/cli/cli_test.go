package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gitwebsync/internal/aws_client_interfaces"
	"gitwebsync/internal/config"
	"gitwebsync/internal/differ"
	"gitwebsync/internal/report"
	"gitwebsync/internal/sync_checker"
	"gitwebsync/internal/upload"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gitwebRepo struct {
	age        string
	lastChange string
	descr      string
}

// gitwebServer serves a project list at / and a summary page at /?p=<repo>.
func gitwebServer(t *testing.T, repos map[string]gitwebRepo) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery == "" {
			var b strings.Builder
			b.WriteString(`<html><body><table class="project_list"><tr><th>Project</th><th>Description</th><th>Owner</th><th>Last Change</th></tr>`)
			for repo, info := range repos {
				descr := info.descr
				if descr == "" {
					descr = "-"
				}
				fmt.Fprintf(&b, `<tr><td><a href="?p=%[1]s;a=summary">%[1]s</a></td><td>%[3]s</td><td>Jane</td><td>%[2]s</td></tr>`, repo, info.age, descr)
			}
			b.WriteString(`</table></body></html>`)
			_, _ = w.Write([]byte(b.String()))
			return
		}

		repo := strings.TrimPrefix(r.URL.RawQuery, "p=")
		info, ok := repos[repo]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<html><body><table><tr><td>last change</td><td>%s</td></tr></table></body></html>`, info.lastChange)
	}))
	t.Cleanup(server.Close)
	return server
}

func clearEnv(t *testing.T) {
	for _, name := range []string{"MASTER_URL", "SLAVE_URL", "PUSHGATEWAY_URL", "SLACK_WEBHOOK", "REPORT_S3_BUCKET"} {
		t.Setenv(name, "")
	}
}

func driftedServers(t *testing.T) (*httptest.Server, *httptest.Server) {
	master := gitwebServer(t, map[string]gitwebRepo{
		"a.git": {age: "2 hours ago", lastChange: "Tue, 2 Jan 2024 10:00:00 +0000"},
		"b.git": {age: "3 min ago", lastChange: "Tue, 2 Jan 2024 12:00:00 +0000"},
		"c.git": {age: "5 weeks ago", lastChange: "Mon, 27 Nov 2023 09:30:00 +0000"},
	})
	slave := gitwebServer(t, map[string]gitwebRepo{
		"a.git": {age: "2 hours ago", lastChange: "Tue, 2 Jan 2024 10:00:00 +0000"},
		"b.git": {age: "2 hours ago", lastChange: "Tue, 2 Jan 2024 10:00:00 +0000"},
	})
	return master, slave
}

func TestExecuteCheck(t *testing.T) {
	t.Run("reports OK when both sides list the same repositories", func(t *testing.T) {
		clearEnv(t)
		repos := map[string]gitwebRepo{"a.git": {age: "2 hours ago"}}
		master := gitwebServer(t, repos)
		slave := gitwebServer(t, repos)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slave.URL}, &out)

		assert.Equal(t, 0, code)
		assert.Equal(t, "OK: all repos in sync\n", out.String())
	})

	t.Run("reports WARNING when the unsynced count exceeds the warning threshold", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slave.URL, "-w", "0", "-c", "10"}, &out)

		assert.Equal(t, 1, code)
		assert.Equal(t, "WARNING: 1 repos not in sync! Those repos are: b.git\n", out.String())
	})

	t.Run("reports CRITICAL when the unsynced count exceeds the critical threshold", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slave.URL, "-w", "0", "-c", "0"}, &out)

		assert.Equal(t, 2, code)
		assert.Equal(t, "CRITICAL: 1 repos not in sync! Those repos are: b.git\n", out.String())
	})

	t.Run("reads endpoints from the environment", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)
		t.Setenv("MASTER_URL", master.URL)
		t.Setenv("SLAVE_URL", slave.URL)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"--warn", "5"}, &out)

		assert.Equal(t, 0, code)
		assert.Equal(t, "OK: 1 repos not in sync (b.git)\n", out.String())
	})

	t.Run("reports UNKNOWN when a listing cannot be parsed", func(t *testing.T) {
		clearEnv(t)
		master, _ := driftedServers(t)
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
		}))
		defer broken.Close()

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", broken.URL}, &out)

		assert.Equal(t, 3, code)
		assert.True(t, strings.HasPrefix(out.String(), "UNKNOWN: "), out.String())
		assert.Contains(t, out.String(), "listing format not recognized")
	})

	t.Run("compares every row of a project list larger than 10 MiB", func(t *testing.T) {
		clearEnv(t)
		descr := strings.Repeat("x", 400)
		masterRepos := map[string]gitwebRepo{}
		slaveRepos := map[string]gitwebRepo{}
		for i := range 30000 {
			repo := fmt.Sprintf("repo%05d.git", i)
			masterRepos[repo] = gitwebRepo{age: "2 days ago", descr: descr}
			slaveRepos[repo] = gitwebRepo{age: "2 days ago", descr: descr}
		}
		masterRepos["zz-last.git"] = gitwebRepo{age: "3 min ago", lastChange: "Tue, 2 Jan 2024 12:00:00 +0000", descr: descr}
		slaveRepos["zz-last.git"] = gitwebRepo{age: "2 hours ago", lastChange: "Tue, 2 Jan 2024 10:00:00 +0000", descr: descr}
		master := gitwebServer(t, masterRepos)
		slave := gitwebServer(t, slaveRepos)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slave.URL}, &out)

		assert.Equal(t, 1, code)
		assert.Equal(t, "WARNING: 1 repos not in sync! Those repos are: zz-last.git\n", out.String())
	})

	t.Run("reports UNKNOWN when a listing reaches the body size limit", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slave.URL, "--max-body-size", "64"}, &out)

		assert.Equal(t, 3, code)
		assert.True(t, strings.HasPrefix(out.String(), "UNKNOWN: "), out.String())
		assert.Contains(t, out.String(), "response body reached the size limit of 64 bytes")
	})

	t.Run("reports UNKNOWN when a request times out", func(t *testing.T) {
		clearEnv(t)
		master, _ := driftedServers(t)
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer slow.Close()

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slow.URL, "--timeout", "200ms"}, &out)

		assert.Equal(t, 3, code)
		assert.True(t, strings.HasPrefix(out.String(), "UNKNOWN: "), out.String())
		assert.Contains(t, out.String(), "Client.Timeout exceeded")
	})

	t.Run("reports UNKNOWN when an endpoint is missing", func(t *testing.T) {
		clearEnv(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", "http://git.example.com"}, &out)

		assert.Equal(t, 3, code)
		assert.Equal(t, "UNKNOWN: slave gitweb URL is required\n", out.String())
	})

	t.Run("accepts a warning threshold above the critical one", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slave.URL, "-w", "20", "-c", "10"}, &out)

		assert.Equal(t, 0, code)
		assert.Equal(t, "OK: 1 repos not in sync (b.git)\n", out.String())
	})

	t.Run("checks the critical threshold before the warning threshold", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"-s", master.URL, "-d", slave.URL, "-w", "5", "-c", "0"}, &out)

		assert.Equal(t, 2, code)
		assert.Equal(t, "CRITICAL: 1 repos not in sync! Those repos are: b.git\n", out.String())
	})
}

func TestExecuteUnsynced(t *testing.T) {
	clearEnv(t)
	master, slave := driftedServers(t)

	var out bytes.Buffer
	code := Execute(t.Context(), []string{"unsynced", "-s", master.URL, "-d", slave.URL, "-o", "json"}, &out)
	require.Equal(t, 0, code, out.String())

	var doc report.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, master.URL, doc.Master)
	assert.Equal(t, slave.URL, doc.Slave)
	assert.Equal(t, []report.UnsyncedEntry{{Repo: "b.git", Skew: "2h0m0s", SkewSeconds: 7200}}, doc.Unsynced)
}

func TestExecuteMissing(t *testing.T) {
	t.Run("renders a table of repositories absent from the slave", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"missing", "-s", master.URL, "-d", slave.URL}, &out)

		require.Equal(t, 0, code, out.String())
		assert.Contains(t, out.String(), "c.git")
		assert.NotContains(t, out.String(), "b.git")
	})

	t.Run("rejects an unknown output format", func(t *testing.T) {
		clearEnv(t)
		master, slave := driftedServers(t)

		var out bytes.Buffer
		code := Execute(t.Context(), []string{"missing", "-s", master.URL, "-d", slave.URL, "-o", "xml"}, &out)

		assert.Equal(t, 3, code)
		assert.Equal(t, "UNKNOWN: unknown output format \"xml\"\n", out.String())
	})
}

func TestUploadReport(t *testing.T) {
	checkedAt := time.Date(2024, time.January, 2, 12, 0, 0, 0, time.UTC)
	cfg := &config.Config{
		MasterURL:      "https://git.example.com",
		SlaveURL:       "https://mirror.example.com",
		ReportS3Bucket: "reports",
		ReportS3Prefix: "gitweb-sync",
	}
	result := sync_checker.Evaluate(differ.UnsyncedReport{"b.git": 2 * time.Hour}, sync_checker.Thresholds{Warn: 0, Crit: 10})
	result.Removed = []string{"old.git"}

	s3Client := aws_client_interfaces.NewMockS3Client()
	s3Client.AddMockPutObjectResponse(&s3.PutObjectInput{
		Bucket: aws.String("reports"),
		Key:    aws.String("gitweb-sync/mirror.example.com/1704196800.json"),
	})

	err := uploadReport(t.Context(), upload.NewUploader(&s3Client, "reports"), cfg, result, checkedAt)
	require.NoError(t, err)
	require.Len(t, s3Client.PutObjectBodies, 1)

	var doc report.Document
	require.NoError(t, json.Unmarshal(s3Client.PutObjectBodies[0], &doc))
	assert.Equal(t, "WARNING", doc.State)
	assert.Equal(t, "WARNING: 1 repos not in sync! Those repos are: b.git", doc.Message)
	assert.Equal(t, []string{"old.git"}, doc.Removed)
	assert.True(t, checkedAt.Equal(doc.CheckedAt))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "mirror.example.com:8080", hostOf("http://mirror.example.com:8080/gitweb"))
	assert.Equal(t, "not a url", hostOf("not a url"))
}
