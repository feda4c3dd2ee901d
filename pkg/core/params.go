package core

import "strings"

// ParamKind is the shape of value a function asks the dispatcher to build
// from a webhook request.
type ParamKind int

const (
	KindInvalid ParamKind = iota
	KindStream            // io.ReadCloser over the body
	KindString            // body decoded with its declared charset
	KindBytes             // raw body bytes
	KindReader            // *bufio.Reader over the decoded text
	KindRequest           // *http.Request carrying a replayable body
	KindUser              // a registered data-holder type
)

var kindNames = map[ParamKind]string{
	KindStream:  "stream",
	KindString:  "string",
	KindBytes:   "bytes",
	KindReader:  "reader",
	KindRequest: "request",
	KindUser:    "user",
}

func (k ParamKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "invalid"
}

func (k ParamKind) builtin() bool { return k >= KindStream && k <= KindRequest }

// ParamType tags a function parameter. TypeName is set only for KindUser.
type ParamType struct {
	Kind     ParamKind
	TypeName string
}

// Built-in parameter types.
var (
	StreamParam  = ParamType{Kind: KindStream}
	StringParam  = ParamType{Kind: KindString}
	BytesParam   = ParamType{Kind: KindBytes}
	ReaderParam  = ParamType{Kind: KindReader}
	RequestParam = ParamType{Kind: KindRequest}
)

// UserParam tags a parameter of a type registered under name.
func UserParam(name string) ParamType { return ParamType{Kind: KindUser, TypeName: name} }

// ParseParamType maps a textual tag to a ParamType. Built-in names win;
// anything else is taken as a user type name. The empty string is invalid.
func ParseParamType(s string) ParamType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ParamType{}
	}
	for k, n := range kindNames {
		if k.builtin() && strings.EqualFold(s, n) {
			return ParamType{Kind: k}
		}
	}
	return UserParam(s)
}

func (p ParamType) String() string {
	if p.Kind == KindUser {
		return p.TypeName
	}
	return p.Kind.String()
}
