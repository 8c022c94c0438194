package runtime

// NativeFunc is a host-supplied function over runtime values.
type NativeFunc func(args []Value) (Value, error)

// NativeFunctionValue is one entry of the injected built-in table.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

// ConversionValue is one entry of the injected conversion table, e.g.
// "inttostr" converting KindInteger to KindString.
type ConversionValue struct {
	Name string
	From Kind
	To   Kind
	Impl func(Value) (Value, error)
}

// ConversionName is the table key of the conversion from one kind to
// another, following the language's "<from>to<to>" operator names.
func ConversionName(from, to Kind) string {
	return conversionTypeName(from) + "to" + conversionTypeName(to)
}

func conversionTypeName(k Kind) string {
	if k == KindString {
		return "str"
	}
	return k.String()
}
