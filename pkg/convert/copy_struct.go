package convert

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// StructAssign 把 src 与 dst 同名字段的值复制到 dst 中，mapping 指定字段改名
// Copy fields with identical names from src into dst; mapping renames fields.
func StructAssign(src any, dst any, mapping ...copier.FieldNameMapping) error {
	opt := copier.Option{DeepCopy: true, FieldNameMapping: mapping}
	if err := copier.CopyWithOption(dst, src, opt); err != nil {
		return errors.Wrap(err, "struct assign")
	}
	return nil
}
