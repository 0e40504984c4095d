package extract

import (
	"sort"

	"github.com/tidwall/gjson"
)

// Node is one element of a bookmark tree. A node may be a bookmark, a
// container, or both; Children returns every nested element in a stable order.
type Node interface {
	Bookmark() (title, url string, ok bool)
	Children() []Node
}

// Walk visits every bookmark below root in pre-order. It keeps an explicit
// stack so arbitrarily deep trees cannot exhaust the goroutine stack.
func Walk(root Node, visit func(title, url string)) {
	if root == nil {
		return
	}

	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if title, url, ok := n.Bookmark(); ok {
			visit(title, url)
		}

		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// jsonNode adapts a Chromium "Bookmarks" JSON value
type jsonNode struct {
	r gjson.Result
}

func (n jsonNode) Bookmark() (string, string, bool) {
	if !n.r.IsObject() || n.r.Get("type").String() != "url" {
		return "", "", false
	}
	name, url := n.r.Get("name"), n.r.Get("url")
	if name.Type != gjson.String || url.Type != gjson.String {
		return "", "", false
	}
	return name.Str, url.Str, true
}

func (n jsonNode) Children() []Node {
	var children []Node
	n.r.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() || v.IsArray() {
			children = append(children, jsonNode{r: v})
		}
		return true
	})
	return children
}

// plistNode adapts a value decoded from a Safari property list
type plistNode struct {
	v interface{}
}

func (n plistNode) Bookmark() (string, string, bool) {
	dict, ok := n.v.(map[string]interface{})
	if !ok {
		return "", "", false
	}
	url, ok := dict["URLString"].(string)
	if !ok {
		return "", "", false
	}
	uri, ok := dict["URIDictionary"].(map[string]interface{})
	if !ok {
		return "", "", false
	}
	title, ok := uri["title"].(string)
	if !ok {
		return "", "", false
	}
	return title, url, true
}

func (n plistNode) Children() []Node {
	var children []Node
	add := func(v interface{}) {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			children = append(children, plistNode{v: v})
		}
	}

	switch v := n.v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(v[k])
		}
	case []interface{}:
		for _, item := range v {
			add(item)
		}
	}
	return children
}
