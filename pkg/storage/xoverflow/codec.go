package xoverflow

import "encoding/json"

// Codec 在值与 Redis 中保存的字节之间转换。
type Codec[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSONCodec 使用 encoding/json 编解码。
type JSONCodec[V any] struct{}

// Marshal 实现 Codec。
func (JSONCodec[V]) Marshal(v V) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal 实现 Codec。
func (JSONCodec[V]) Unmarshal(data []byte) (V, error) {
	var v V
	err := json.Unmarshal(data, &v)
	return v, err
}
