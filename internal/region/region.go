// Package region decides which articles are relevant for a requested region.
package region

import (
	"net/url"
	"regexp"
	"strings"
)

// Code is a normalized region code: a two-letter uppercase country code or
// the sentinel All.
type Code string

const (
	// All means no regional restriction.
	All Code = "ALL"
	// China is the default region.
	China Code = "CN"
)

// MinTitleHan is the minimum number of Han code points a title must contain
// to count as relevant for the CN region.
const MinTitleHan = 10

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// Normalize maps arbitrary region input to a Code. Empty or "AUTO" defaults
// to CN, the global aliases map to ALL, any two-letter code passes through,
// everything else falls back to CN. Never fails.
func Normalize(input string) Code {
	r := strings.ToUpper(strings.TrimSpace(input))
	switch r {
	case "", "AUTO":
		return China
	case "ALL", "GLOBAL", "WORLD":
		return All
	}
	if countryCode.MatchString(r) {
		return Code(r)
	}
	return China
}

// IsURLAllowed reports whether a URL may appear in results for the region.
// ALL allows everything. Other regions, CN included, only require a parseable
// http/https URL: the domain allow-list below is deliberately not consulted,
// relevance for CN comes from the Han-count title check instead.
func IsURLAllowed(raw string, region Code) bool {
	if region == All {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// mainland .com platforms that don't use a .cn domain.
var mainlandComAllow = []string{
	"baidu.com",
	"baijiahao.baidu.com",
	"qq.com",
	"weibo.com",
	"bilibili.com",
	"toutiao.com",
	"douyin.com",
	"kuaishou.com",
	"sohu.com",
	"163.com",
}

// IsMainlandHostname reports whether a hostname belongs to a mainland China
// site. Kept for a stricter CN filter; IsURLAllowed intentionally does not
// call it.
func IsMainlandHostname(hostname string) bool {
	h := strings.ToLower(strings.TrimSpace(hostname))
	if h == "" {
		return false
	}
	if h == "cn" || strings.HasSuffix(h, ".cn") {
		return true
	}
	for _, allowed := range mainlandComAllow {
		if h == allowed || strings.HasSuffix(h, "."+allowed) {
			return true
		}
	}
	return false
}
