// Package httpclient はRPC-over-HTTP形式のバックエンドを呼び出すクライアントを提供する。
//
// すべての呼び出しはJSONボディを持つPOSTリクエストとして送信される。
// Basic認証ヘッダーとリクエストIDの伝播、2xx以外のレスポンスの
// エラー化など、バックエンドとの通信パターンを統一する。
package httpclient
