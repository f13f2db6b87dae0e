package gateway

// フィールドの存在はbinding:"required"で検証する。
// 空文字列は有効な値として受け付けるため、文字列はポインタで受け取る。

// listFilesQuery はファイル一覧取得のクエリパラメータ。
type listFilesQuery struct {
	// Fs は対象のリモート（例: "gdrive:"）。
	Fs *string `form:"fs" binding:"required"`
	// Remote はリモート内のパス。省略時はルート。
	Remote string `form:"remote"`
}

// createMountRequest はマウント作成リクエストのJSON構造。
type createMountRequest struct {
	// Fs はマウントするリモート。
	Fs *string `json:"fs" binding:"required"`
	// MountPoint はローカルのマウント先パス。
	MountPoint *string `json:"mount_point" binding:"required"`
}

// unmountRequest はアンマウントリクエストのJSON構造。
type unmountRequest struct {
	// MountPoint はアンマウントするパス。
	MountPoint *string `json:"mount_point" binding:"required"`
}

// transferRequest はファイルのコピー/移動リクエストのJSON構造。
type transferRequest struct {
	// SrcFs はコピー元のリモート。
	SrcFs *string `json:"src_fs" binding:"required"`
	// SrcRemote はコピー元のファイルパス。
	SrcRemote *string `json:"src_remote" binding:"required"`
	// DstFs はコピー先のリモート。
	DstFs *string `json:"dst_fs" binding:"required"`
	// DstRemote はコピー先のファイルパス。
	DstRemote *string `json:"dst_remote" binding:"required"`
}

// fileRequest はファイル削除・ディレクトリ作成リクエストのJSON構造。
type fileRequest struct {
	// Fs は対象のリモート。
	Fs *string `json:"fs" binding:"required"`
	// Remote はリモート内のパス。
	Remote *string `json:"remote" binding:"required"`
}

// healthResponse はヘルスチェックのJSONレスポンス構造。
type healthResponse struct {
	// Status は常に"ok"。
	Status string `json:"status"`
	// BackendConnected はバックエンドへの認証付き疎通確認が成功したかどうか。
	BackendConnected bool `json:"backend_connected"`
}
