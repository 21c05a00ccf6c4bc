package services

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortByName 按名称做区域感知排序。Collator 非并发安全，每次排序单独创建
func sortByName[T any](items []T, name func(*T) string) {
	c := collate.New(language.Und)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(name(&items[i]), name(&items[j])) < 0
	})
}
