package rclone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/rcgateway/internal/metrics"
	"github.com/nao1215/rcgateway/pkg/httpclient"
)

// バックエンドのエンドポイント名。
const (
	endpointNoopAuth    = "rc/noopauth"
	endpointListRemotes = "config/listremotes"
	endpointList        = "operations/list"
	endpointConfigDump  = "config/dump"
	endpointJobList     = "job/list"
	endpointJobStatus   = "job/status"
	endpointListMounts  = "mount/listmounts"
	endpointMount       = "mount/mount"
	endpointUnmount     = "mount/unmount"
	endpointCopyFile    = "operations/copyfile"
	endpointMoveFile    = "operations/movefile"
	endpointDeleteFile  = "operations/deletefile"
	endpointMkdir       = "operations/mkdir"
	endpointCoreVersion = "core/version"
)

// Client はrclone RC APIのクライアント。
// 生成後は変更されないため、すべてのリクエストで共有できる。
type Client struct {
	// http はバックエンドへのHTTPクライアント。
	http *httpclient.Client
}

// New は接続設定からクライアントを生成する。
func New(cfg Config) *Client {
	return &Client{
		http: httpclient.New(cfg.URL,
			httpclient.WithBasicAuth(cfg.Username, cfg.Password),
			httpclient.WithTimeout(cfg.Timeout),
		),
	}
}

// URL は接続先のベースURLを返す。
func (c *Client) URL() string {
	return c.http.BaseURL()
}

// call はエンドポイントを1回呼び出し、所要時間と結果をメトリクスに記録する。
func (c *Client) call(ctx context.Context, endpoint string, body, result any) error {
	start := time.Now()
	err := c.http.PostJSON(ctx, endpoint, body, result)
	metrics.RecordBackendCall(endpoint, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%sの呼び出しに失敗: %w", endpoint, err)
	}
	return nil
}

// execute はレスポンスを使わない操作を実行する。
// レスポンスボディがJSONとして不正な場合は失敗とする。
func (c *Client) execute(ctx context.Context, endpoint string, body any) error {
	var discard json.RawMessage
	return c.call(ctx, endpoint, body, &discard)
}

// HealthCheck は認証付きの疎通確認を行う。
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.execute(ctx, endpointNoopAuth, nil)
}

// ListRemotes は設定済みのリモート名の一覧を返す。
func (c *Client) ListRemotes(ctx context.Context) ([]string, error) {
	var resp listRemotesResponse
	if err := c.call(ctx, endpointListRemotes, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Remotes == nil {
		return []string{}, nil
	}
	return resp.Remotes, nil
}

// ListFiles はfs上のremoteパス直下のエントリ一覧を返す。
// remoteが空文字列の場合はリモートのルートを対象とする。
func (c *Client) ListFiles(ctx context.Context, fs, remote string) ([]FileInfo, error) {
	var resp listFilesResponse
	if err := c.call(ctx, endpointList, fileRequest{Fs: fs, Remote: remote}, &resp); err != nil {
		return nil, err
	}
	if resp.List == nil {
		return []FileInfo{}, nil
	}
	return resp.List, nil
}

// ConfigDump はバックエンドの設定全体をそのまま返す。
func (c *Client) ConfigDump(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.call(ctx, endpointConfigDump, nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return map[string]any{}, nil
	}
	return resp, nil
}

// ListJobs はバックエンドが把握しているジョブの一覧を返す。
func (c *Client) ListJobs(ctx context.Context) ([]JobInfo, error) {
	var resp listJobsResponse
	if err := c.call(ctx, endpointJobList, nil, &resp); err != nil {
		return nil, err
	}
	jobs := make([]JobInfo, 0, len(resp.JobIDs))
	for _, id := range resp.JobIDs {
		jobs = append(jobs, JobInfo{ID: id})
	}
	return jobs, nil
}

// JobStatus は指定したジョブの状態を返す。
func (c *Client) JobStatus(ctx context.Context, id int64) (*JobStatus, error) {
	var resp jobStatusResponse
	if err := c.call(ctx, endpointJobStatus, jobStatusRequest{JobID: id}, &resp); err != nil {
		return nil, err
	}
	return &JobStatus{
		ID:        resp.ID,
		Group:     resp.Group,
		StartTime: resp.StartTime,
		EndTime:   resp.EndTime,
		Error:     resp.Error,
		Finished:  resp.Finished,
		Success:   resp.Success,
		Duration:  resp.Duration,
		Output:    jobOutput(resp.Output),
	}, nil
}

// jobOutput はnullの出力をnilにし、JSONでは省略されるようにする。
func jobOutput(raw json.RawMessage) json.RawMessage {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	return raw
}

// ListMounts は有効なマウントポイントの一覧を返す。
func (c *Client) ListMounts(ctx context.Context) ([]MountInfo, error) {
	var resp listMountsResponse
	if err := c.call(ctx, endpointListMounts, nil, &resp); err != nil {
		return nil, err
	}
	mounts := make([]MountInfo, 0, len(resp.MountPoints))
	for _, point := range resp.MountPoints {
		mounts = append(mounts, MountInfo{MountPoint: string(point)})
	}
	return mounts, nil
}

// CreateMount はfsをローカルのmountPointにマウントする。
func (c *Client) CreateMount(ctx context.Context, fs, mountPoint string) error {
	return c.execute(ctx, endpointMount, mountRequest{Fs: fs, MountPoint: mountPoint})
}

// Unmount はmountPointのマウントを解除する。
func (c *Client) Unmount(ctx context.Context, mountPoint string) error {
	return c.execute(ctx, endpointUnmount, unmountRequest{MountPoint: mountPoint})
}

// CopyFile はファイル1件を非同期でコピーする。
// ジョブの完了は待たない。
func (c *Client) CopyFile(ctx context.Context, t Transfer) error {
	return c.execute(ctx, endpointCopyFile, newTransferRequest(t))
}

// MoveFile はファイル1件を非同期で移動する。
// ジョブの完了は待たない。
func (c *Client) MoveFile(ctx context.Context, t Transfer) error {
	return c.execute(ctx, endpointMoveFile, newTransferRequest(t))
}

// DeleteFile はファイル1件を削除する。
func (c *Client) DeleteFile(ctx context.Context, fs, remote string) error {
	return c.execute(ctx, endpointDeleteFile, fileRequest{Fs: fs, Remote: remote})
}

// CreateDirectory はディレクトリを1つ作成する。
func (c *Client) CreateDirectory(ctx context.Context, fs, remote string) error {
	return c.execute(ctx, endpointMkdir, fileRequest{Fs: fs, Remote: remote})
}

// Version はバックエンドのバージョン情報を返す。
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var resp versionResponse
	if err := c.call(ctx, endpointCoreVersion, nil, &resp); err != nil {
		return nil, err
	}
	return &VersionInfo{
		Version:   resp.Version,
		GoVersion: resp.GoVersion,
		OS:        resp.OS,
		Arch:      resp.Arch,
		IsGit:     resp.IsGit,
		IsBeta:    resp.IsBeta,
	}, nil
}

// newTransferRequest はTransferをバックエンドの非同期リクエストに変換する。
func newTransferRequest(t Transfer) transferRequest {
	return transferRequest{
		SrcFs:     t.SrcFs,
		SrcRemote: t.SrcRemote,
		DstFs:     t.DstFs,
		DstRemote: t.DstRemote,
		Async:     true,
	}
}
