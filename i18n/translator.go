package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "kind"); dictionary entries reference it as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":          "invalid type",
		"invalid_format":        "invalid {kind} {value}",
		"required":              "required field {field} missing",
		"too_small":             "{field} is too small",
		"too_big":               "{field} is too big",
		"unknown_key":           "unknown key",
		"duplicate_key":         "duplicate key",
		"discriminator_missing": "type hint missing",
		"discriminator_unknown": "type is not registered",
		"unsupported_value":     "unsupported value",
		"parse_error":           "parse error",
		"truncated":             "truncated",
		"immutable":             "entity is immutable",
		"business_rule":         "business rule violated",
	},
	"ja": {
		"invalid_type":          "型が不正です",
		"invalid_format":        "{kind} の形式が不正です: {value}",
		"required":              "必須フィールド {field} が不足しています",
		"too_small":             "{field} が小さすぎます",
		"too_big":               "{field} が大きすぎます",
		"unknown_key":           "未知のキーです",
		"duplicate_key":         "キーが重複しています",
		"discriminator_missing": "型ヒントがありません",
		"discriminator_unknown": "未登録の型です",
		"unsupported_value":     "サポートされていない値です",
		"parse_error":           "解析エラー",
		"truncated":             "打ち切られました",
		"immutable":             "エンティティは変更できません",
		"business_rule":         "業務ルール違反です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return expand(msg, data)
}

// expand substitutes {name} placeholders from data. Unknown placeholders are
// dropped together with a preceding space.
func expand(msg string, data map[string]string) string {
	if !strings.Contains(msg, "{") {
		return msg
	}
	var b strings.Builder
	for {
		i := strings.IndexByte(msg, '{')
		if i < 0 {
			b.WriteString(msg)
			break
		}
		j := strings.IndexByte(msg[i:], '}')
		if j < 0 {
			b.WriteString(msg)
			break
		}
		name := msg[i+1 : i+j]
		if v, ok := data[name]; ok {
			b.WriteString(msg[:i])
			b.WriteString(v)
		} else {
			b.WriteString(strings.TrimSuffix(msg[:i], " "))
		}
		msg = msg[i+j+1:]
	}
	return b.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
