package middleware

import (
	"strings"

	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// ContextKeyLang is the gin context key holding the resolved language tag
// ContextKeyLang 保存解析后语言标识的上下文键
const ContextKeyLang = "lang"

// requestLang picks the language from ?lang=, the lang header, then Accept-Language
// requestLang 依次读取 ?lang=、lang 头与 Accept-Language
func requestLang(c *gin.Context) string {
	if s, ok := c.GetQuery("lang"); ok && s != "" {
		return s
	}
	if s := c.GetHeader("lang"); s != "" {
		return s
	}
	// zh-CN,zh;q=0.9,en;q=0.8 只取第一个
	accept := c.GetHeader("Accept-Language")
	if i := strings.IndexAny(accept, ",;"); i >= 0 {
		accept = accept[:i]
	}
	return strings.TrimSpace(accept)
}

// LangWithTranslator attaches a validator translator and message language per request
// LangWithTranslator 为每个请求挂载校验翻译器并设置提示语言
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := strings.ToLower(strings.ReplaceAll(requestLang(c), "-", "_"))

		trans, found := uni.GetTranslator(lang)
		if !found {
			// zh_tw 之类的地区变体退回到主语言
			if base, _, ok := strings.Cut(lang, "_"); ok {
				trans, found = uni.GetTranslator(base)
			}
		}
		if !found {
			trans, _ = uni.GetTranslator(code.FALLBACK_LNG)
			lang = code.FALLBACK_LNG
		}

		c.Set("trans", trans)
		c.Set(ContextKeyLang, trans.Locale())
		code.SetGlobalDefaultLang(lang)

		c.Next()
	}
}
