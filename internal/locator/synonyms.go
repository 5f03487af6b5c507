package locator

import "strings"

// synonyms maps common control names in step text to the attribute values
// sites tend to use for them.
var synonyms = map[string][]string{
	"搜索":  {"search", "q", "query", "wd", "kw", "keyword"},
	"查询":  {"search", "query", "q"},
	"用户名": {"username", "user", "login", "account"},
	"账号":  {"account", "username", "login"},
	"密码":  {"password", "pwd", "passwd"},
	"邮箱":  {"email", "mail"},
	"手机号": {"phone", "mobile", "tel"},
	"验证码": {"captcha", "code", "verify"},
	"登录":  {"login", "signin", "sign in", "log in"},
	"注册":  {"register", "signup", "sign up"},
	"提交":  {"submit"},
	"确定":  {"ok", "confirm"},
	"取消":  {"cancel"},
	"下一步": {"next"},
	"首页":  {"home"},
}

// controlSuffixes are stripped from a hint to get at the control's name,
// e.g. "搜索框" -> "搜索", "登录按钮" -> "登录".
var controlSuffixes = []string{
	"输入框", "文本框", "按钮", "链接", "下拉框", "复选框", "单选框", "框",
	" button", " field", " box", " link", " input",
}

// submitHints are hint names that should also match a type=submit control.
var submitHints = map[string]bool{"搜索": true, "提交": true, "search": true, "submit": true, "查询": true}

const quoteChars = "\"'“”‘’「」《》 "

// hintTerms returns the normalized hint, its stripped core name and the
// synonyms of that core name.
func hintTerms(hint string) (full, core string, syns []string) {
	full = strings.ToLower(strings.TrimSpace(hint))
	full = strings.Trim(full, quoteChars)
	core = full
	for changed := true; changed; {
		changed = false
		for _, suf := range controlSuffixes {
			if strings.HasSuffix(core, suf) {
				core = strings.TrimSpace(strings.TrimSuffix(core, suf))
				changed = true
			}
		}
	}
	core = strings.Trim(strings.TrimPrefix(core, "the "), quoteChars)
	return full, core, synonyms[core]
}
