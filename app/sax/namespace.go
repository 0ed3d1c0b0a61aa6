package sax

import "strings"

type binding struct {
	prefix string
	uri    string
}

// nsStack holds prefix bindings in declaration order. Each open element
// remembers the stack height before its own declarations so closing it
// drops exactly the bindings it introduced.
type nsStack struct {
	bindings []binding
}

func newNSStack() *nsStack {
	return &nsStack{bindings: []binding{{prefix: "xml", uri: XMLNamespace}}}
}

func (s *nsStack) mark() int {
	return len(s.bindings)
}

func (s *nsStack) push(prefix, uri string) {
	s.bindings = append(s.bindings, binding{prefix: prefix, uri: uri})
}

func (s *nsStack) popTo(mark int) {
	if mark < 1 {
		mark = 1
	}
	if mark < len(s.bindings) {
		s.bindings = s.bindings[:mark]
	}
}

func (s *nsStack) lookup(prefix string) (string, bool) {
	if prefix == "xmlns" {
		return XMLNSNamespace, true
	}
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].prefix == prefix {
			return s.bindings[i].uri, true
		}
	}
	return "", false
}

func splitQName(qname string) (prefix, local string) {
	i := strings.IndexByte(qname, ':')
	if i <= 0 || i == len(qname)-1 {
		return "", qname
	}
	return qname[:i], qname[i+1:]
}
