// Package gateway はrclone RC APIの前段に立つHTTPゲートウェイを提供する。
//
// ブラウザから扱いやすいREST形式のリクエストを受け付け、rclone RCの
// 呼び出しに変換する。レスポンスはフィールド名の変換と展開のみを行い、
// キャッシュやリトライは持たない。バックエンドの失敗はすべてボディ無しの
// 500として返す。
package gateway
