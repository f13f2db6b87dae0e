package rclone

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Config はバックエンドクライアントの接続設定。
// 起動時に一度だけ生成され、以降は変更されない。
type Config struct {
	// URL はrclone RCサーバーのベースURL。
	URL string
	// Username はBasic認証のユーザー名。
	Username string
	// Password はBasic認証のパスワード。
	Password string
	// Timeout は1回の呼び出しのタイムアウト。0以下ならデフォルト値を使う。
	Timeout time.Duration
}

// FileInfo はリモート上のファイルまたはディレクトリ1件の情報。
type FileInfo struct {
	// Path はリモートのルートからの相対パス。
	Path string `json:"path"`
	// Name はファイル名。
	Name string `json:"name"`
	// Size はバイト数。不明な場合はnil。
	Size *int64 `json:"size"`
	// IsDir はディレクトリであればtrue。
	IsDir bool `json:"is_dir"`
	// ModTime は更新日時。不明な場合はnil。
	ModTime *string `json:"mod_time"`
}

// JobInfo はバックエンドの非同期ジョブの識別子。
type JobInfo struct {
	// ID はジョブID。
	ID int64 `json:"id"`
}

// MountInfo はバックエンドが管理するマウントポイント。
type MountInfo struct {
	// MountPoint はローカルのマウント先パス。
	MountPoint string `json:"mount_point"`
}

// Transfer はリモート間のファイル1件のコピーまたは移動の指定。
type Transfer struct {
	// SrcFs はコピー元のリモート（例: "gdrive:"）。
	SrcFs string
	// SrcRemote はコピー元のファイルパス。
	SrcRemote string
	// DstFs はコピー先のリモート。
	DstFs string
	// DstRemote はコピー先のファイルパス。
	DstRemote string
}

// JobStatus は非同期ジョブの状態。
type JobStatus struct {
	// ID はジョブID。
	ID int64 `json:"id"`
	// Group は統計情報のグループ名。
	Group string `json:"group"`
	// StartTime は開始日時。
	StartTime string `json:"start_time"`
	// EndTime は終了日時。未完了の場合は空。
	EndTime string `json:"end_time"`
	// Error は失敗時のエラーメッセージ。
	Error string `json:"error"`
	// Finished は終了していればtrue。
	Finished bool `json:"finished"`
	// Success は成功していればtrue。
	Success bool `json:"success"`
	// Duration は経過秒数。
	Duration float64 `json:"duration"`
	// Output はジョブの出力。バックエンドの値をそのまま返す。出力が無い場合は省略する。
	Output json.RawMessage `json:"output,omitempty"`
}

// VersionInfo はバックエンドのバージョン情報。
type VersionInfo struct {
	// Version はrcloneのバージョン文字列。
	Version string `json:"version"`
	// GoVersion はビルドに使われたGoのバージョン。
	GoVersion string `json:"go_version"`
	// OS は実行中のOS。
	OS string `json:"os"`
	// Arch は実行中のアーキテクチャ。
	Arch string `json:"arch"`
	// IsGit は開発ビルドであればtrue。
	IsGit bool `json:"is_git"`
	// IsBeta はベータ版であればtrue。
	IsBeta bool `json:"is_beta"`
}

// 以下はバックエンドのリクエスト/レスポンス形式。フィールド名はrclone側の命名に従う。

type listFilesResponse struct {
	List []FileInfo `json:"list"`
}

type listRemotesResponse struct {
	Remotes []string `json:"remotes"`
}

type listJobsResponse struct {
	JobIDs []int64 `json:"jobids"`
}

type listMountsResponse struct {
	MountPoints []mountPointEntry `json:"mountPoints"`
}

// mountPointEntry はmount/listmountsの1要素。
// 文字列と{"MountPoint": ...}形式のオブジェクトの両方を受け付ける。
type mountPointEntry string

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (m *mountPointEntry) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return errors.New("マウントポイントがnullです")
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = mountPointEntry(s)
		return nil
	}

	var obj struct {
		MountPoint *string `json:"MountPoint"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("マウントポイントの形式が不正です: %s", string(data))
	}
	if obj.MountPoint == nil {
		return fmt.Errorf("MountPointフィールドがありません: %s", string(data))
	}
	*m = mountPointEntry(*obj.MountPoint)
	return nil
}

type mountRequest struct {
	Fs         string `json:"fs"`
	MountPoint string `json:"mountPoint"`
}

type unmountRequest struct {
	MountPoint string `json:"mountPoint"`
}

type transferRequest struct {
	SrcFs     string `json:"srcFs"`
	SrcRemote string `json:"srcRemote"`
	DstFs     string `json:"dstFs"`
	DstRemote string `json:"dstRemote"`
	Async     bool   `json:"_async"`
}

type fileRequest struct {
	Fs     string `json:"fs"`
	Remote string `json:"remote"`
}

type jobStatusRequest struct {
	JobID int64 `json:"jobid"`
}

type jobStatusResponse struct {
	ID        int64           `json:"id"`
	Group     string          `json:"group"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
	Error     string          `json:"error"`
	Finished  bool            `json:"finished"`
	Success   bool            `json:"success"`
	Duration  float64         `json:"duration"`
	Output    json.RawMessage `json:"output"`
}

type versionResponse struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	IsGit     bool   `json:"isGit"`
	IsBeta    bool   `json:"isBeta"`
}
