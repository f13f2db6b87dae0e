package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/rcgateway/internal/rclone"
	"github.com/nao1215/rcgateway/pkg/httpclient"
	"github.com/nao1215/rcgateway/pkg/middleware"
)

// handleHealth はヘルスチェックのハンドラを返す。
// バックエンドに到達できない場合もHTTPとしては常に200を返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.backend.HealthCheck(requestContext(c))
		if err != nil {
			s.logger.Debug("バックエンドの疎通確認に失敗しました",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
		}
		c.JSON(http.StatusOK, healthResponse{
			Status:           "ok",
			BackendConnected: err == nil,
		})
	}
}

// handleListRemotes はリモート一覧取得のハンドラを返す。
func (s *Server) handleListRemotes() gin.HandlerFunc {
	return func(c *gin.Context) {
		remotes, err := s.backend.ListRemotes(requestContext(c))
		if err != nil {
			s.backendFailed(c, "list_remotes", err)
			return
		}
		c.JSON(http.StatusOK, remotes)
	}
}

// handleListFiles はファイル一覧取得のハンドラを返す。
// remoteが省略された場合はリモートのルートを一覧する。
func (s *Server) handleListFiles() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q listFilesQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err)
			return
		}

		files, err := s.backend.ListFiles(requestContext(c), *q.Fs, q.Remote)
		if err != nil {
			s.backendFailed(c, "list_files", err)
			return
		}
		c.JSON(http.StatusOK, files)
	}
}

// handleConfigDump は設定ダンプ取得のハンドラを返す。
func (s *Server) handleConfigDump() gin.HandlerFunc {
	return func(c *gin.Context) {
		dump, err := s.backend.ConfigDump(requestContext(c))
		if err != nil {
			s.backendFailed(c, "config_dump", err)
			return
		}
		c.JSON(http.StatusOK, dump)
	}
}

// handleListJobs はジョブ一覧取得のハンドラを返す。
func (s *Server) handleListJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := s.backend.ListJobs(requestContext(c))
		if err != nil {
			s.backendFailed(c, "list_jobs", err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}

// handleJobStatus はジョブ状態取得のハンドラを返す。
func (s *Server) handleJobStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("ジョブIDは整数で指定してください: %q", c.Param("id")))
			return
		}

		status, err := s.backend.JobStatus(requestContext(c), id)
		if err != nil {
			s.backendFailed(c, "job_status", err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// handleListMounts はマウント一覧取得のハンドラを返す。
func (s *Server) handleListMounts() gin.HandlerFunc {
	return func(c *gin.Context) {
		mounts, err := s.backend.ListMounts(requestContext(c))
		if err != nil {
			s.backendFailed(c, "list_mounts", err)
			return
		}
		c.JSON(http.StatusOK, mounts)
	}
}

// handleVersion はバックエンドのバージョン取得のハンドラを返す。
func (s *Server) handleVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		version, err := s.backend.Version(requestContext(c))
		if err != nil {
			s.backendFailed(c, "version", err)
			return
		}
		c.JSON(http.StatusOK, version)
	}
}

// handleCreateMount はマウント作成のハンドラを返す。
func (s *Server) handleCreateMount() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s.respondEmpty(c, "create_mount", s.backend.CreateMount(requestContext(c), *req.Fs, *req.MountPoint))
	}
}

// handleUnmount はアンマウントのハンドラを返す。
func (s *Server) handleUnmount() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req unmountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s.respondEmpty(c, "unmount", s.backend.Unmount(requestContext(c), *req.MountPoint))
	}
}

// handleCopyFile はファイルコピーのハンドラを返す。
// バックエンドには非同期ジョブとして投入し、完了は待たない。
func (s *Server) handleCopyFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s.respondEmpty(c, "copy_file", s.backend.CopyFile(requestContext(c), req.toTransfer()))
	}
}

// handleMoveFile はファイル移動のハンドラを返す。
// バックエンドには非同期ジョブとして投入し、完了は待たない。
func (s *Server) handleMoveFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s.respondEmpty(c, "move_file", s.backend.MoveFile(requestContext(c), req.toTransfer()))
	}
}

// handleDeleteFile はファイル削除のハンドラを返す。
func (s *Server) handleDeleteFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s.respondEmpty(c, "delete_file", s.backend.DeleteFile(requestContext(c), *req.Fs, *req.Remote))
	}
}

// handleCreateDirectory はディレクトリ作成のハンドラを返す。
func (s *Server) handleCreateDirectory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s.respondEmpty(c, "create_directory", s.backend.CreateDirectory(requestContext(c), *req.Fs, *req.Remote))
	}
}

// toTransfer はリクエストをバックエンドのTransferに変換する。
func (r transferRequest) toTransfer() rclone.Transfer {
	return rclone.Transfer{
		SrcFs:     *r.SrcFs,
		SrcRemote: *r.SrcRemote,
		DstFs:     *r.DstFs,
		DstRemote: *r.DstRemote,
	}
}

// respondEmpty は変更系操作の結果をボディ無しのステータスで返す。
func (s *Server) respondEmpty(c *gin.Context, operation string, err error) {
	if err != nil {
		s.backendFailed(c, operation, err)
		return
	}
	c.Status(http.StatusOK)
}

// backendFailed はバックエンドの失敗をログに記録し、ボディ無しの500を返す。
// 失敗の種類（到達不能、拒否、不正なレスポンス）は呼び出し元に区別させない。
func (s *Server) backendFailed(c *gin.Context, operation string, err error) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	}
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		fields = append(fields, zap.Int("upstream_status", statusErr.StatusCode))
	}
	s.logger.Warn("バックエンドの呼び出しに失敗しました", fields...)

	c.AbortWithStatus(http.StatusInternalServerError)
}

// badRequest はリクエストの検証エラーを400で返す。
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
}

// requestContext はバックエンド呼び出し用のコンテキストを返す。
// リクエストIDはX-Request-IDとしてバックエンドに伝播される。
func requestContext(c *gin.Context) context.Context {
	return httpclient.WithRequestID(c.Request.Context(), middleware.GetRequestID(c))
}
