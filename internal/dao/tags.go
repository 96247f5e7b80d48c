package dao

import (
	"github.com/haierkeys/jot-sync-service/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// encodeTags 标签集合编码为 JSON 数组字符串
func encodeTags(tags []string) (string, error) {
	s, err := sonic.MarshalString(domain.NormalizeTags(tags))
	if err != nil {
		return "", errors.Wrap(err, "encode tags")
	}
	return s, nil
}

// decodeTags 解码持久化的标签，失败视为记录损坏
func decodeTags(id, raw string) ([]string, error) {
	var tags []string
	if err := sonic.UnmarshalString(raw, &tags); err != nil {
		return nil, errors.Wrapf(domain.ErrCorruptRecord, "note %s: tags %q: %v", id, raw, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
