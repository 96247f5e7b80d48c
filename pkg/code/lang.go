package code

import (
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// lang holds the English and Simplified Chinese text of one message
// lang 保存一条提示的英文与简体中文文本
type lang struct {
	en    string
	zh_cn string
}

// FALLBACK_LNG language used when the requested one has no text
// FALLBACK_LNG 请求语言没有文本时使用的语言
const FALLBACK_LNG = "en"

// ErrUnsupportedLang is returned for language tags with no message table
// ErrUnsupportedLang 不支持的语言标识
var ErrUnsupportedLang = errors.New("unsupported language")

// current 在包变量初始化期间可能仍为空
var current atomic.Value

// normalizeLang maps request tags such as zh, zh-CN or en_US onto a message column
// normalizeLang 将 zh、zh-CN、en_US 等请求标识映射到提示列
func normalizeLang(tag string) string {
	tag = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "-", "_"))
	switch {
	case tag == "zh", tag == "zh_cn", tag == "zh_hans", strings.HasPrefix(tag, "zh_hans_"):
		return "zh_cn"
	case tag == "en", strings.HasPrefix(tag, "en_"):
		return "en"
	}
	return ""
}

// GetMessage returns the text for the current language, falling back to English
// GetMessage 返回当前语言的文本，缺失时退回英文
func (l lang) GetMessage() string {
	if GetGlobalDefaultLang() == "zh_cn" && l.zh_cn != "" {
		return l.zh_cn
	}
	return l.en
}

// GetSupportedLanguages lists the message columns
// GetSupportedLanguages 返回支持的语言列表
func GetSupportedLanguages() []string {
	return []string{"en", "zh_cn"}
}

// SetGlobalDefaultLang switches the message language; unknown tags reset it to English
// SetGlobalDefaultLang 切换提示语言，未知标识重置为英文
func SetGlobalDefaultLang(language string) error {
	l := normalizeLang(language)
	if l == "" {
		current.Store(FALLBACK_LNG)
		return errors.Wrapf(ErrUnsupportedLang, "%q", language)
	}
	current.Store(l)
	return nil
}

// GetGlobalDefaultLang returns the current message language
// GetGlobalDefaultLang 返回当前提示语言
func GetGlobalDefaultLang() string {
	if l, ok := current.Load().(string); ok {
		return l
	}
	return FALLBACK_LNG
}
