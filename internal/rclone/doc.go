// Package rclone はrclone RC（リモートコントロール）APIのクライアントを提供する。
//
// バックエンドの各操作を1回のPOST呼び出しに対応付け、rclone側の
// フィールド名（mountPoints、jobidsなど）をゲートウェイの命名に変換する。
// 転送エラー、2xx以外の応答、不正なレスポンスはいずれもerrorとして返す。
package rclone
