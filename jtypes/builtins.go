package jtypes

func declareBuiltins(p *Pool) {
	object := &Class{Name: ObjectName}
	iface := func(name string, params []string, supers ...*Class) ClassDecl {
		return ClassDecl{Name: name, Params: params, Interfaces: supers, Interface: true}
	}
	class := func(name string, params []string, super *Class, ifaces ...*Class) ClassDecl {
		return ClassDecl{Name: name, Params: params, Super: super, Interfaces: ifaces}
	}
	self := func(owner, param string) TypeVar { return TypeVar{Name: param, Owner: owner} }
	serializable := &Class{Name: SerializableName}
	comparableOf := func(t Type) *Class { return ClassOf("java.lang.Comparable", t) }

	decls := []ClassDecl{
		{Name: ObjectName},
		iface(SerializableName, nil),
		iface(CloneableName, nil),
		iface("java.lang.Comparable", []string{"T"}),
		iface("java.lang.CharSequence", nil),
		iface("java.lang.Iterable", []string{"T"}),
		class(StringName, nil, object, serializable, comparableOf(&Class{Name: StringName}), &Class{Name: "java.lang.CharSequence"}),
		class("java.lang.Number", nil, object, serializable),
		class("java.lang.Boolean", nil, object, serializable, comparableOf(&Class{Name: "java.lang.Boolean"})),
		class("java.lang.Character", nil, object, serializable, comparableOf(&Class{Name: "java.lang.Character"})),
	}
	for _, number := range []string{"Byte", "Short", "Integer", "Long", "Float", "Double"} {
		name := "java.lang." + number
		decls = append(decls, class(name, nil, &Class{Name: "java.lang.Number"}, comparableOf(&Class{Name: name})))
	}
	decls = append(decls,
		class(ThrowableName, nil, object, serializable),
		class(ExceptionName, nil, &Class{Name: ThrowableName}),
		class("java.lang.Error", nil, &Class{Name: ThrowableName}),
		class(RuntimeExceptionName, nil, &Class{Name: ExceptionName}),
		class("java.lang.IllegalArgumentException", nil, &Class{Name: RuntimeExceptionName}),
		class("java.lang.IllegalStateException", nil, &Class{Name: RuntimeExceptionName}),
		class("java.io.IOException", nil, &Class{Name: ExceptionName}),

		iface("java.util.Collection", []string{"E"}, ClassOf("java.lang.Iterable", self("java.util.Collection", "E"))),
		iface("java.util.List", []string{"E"}, ClassOf("java.util.Collection", self("java.util.List", "E"))),
		iface("java.util.Set", []string{"E"}, ClassOf("java.util.Collection", self("java.util.Set", "E"))),
		iface("java.util.Map", []string{"K", "V"}),
		class("java.util.ArrayList", []string{"E"}, object,
			ClassOf("java.util.List", self("java.util.ArrayList", "E")), &Class{Name: CloneableName}, serializable),
		class("java.util.LinkedList", []string{"E"}, object,
			ClassOf("java.util.List", self("java.util.LinkedList", "E")), &Class{Name: CloneableName}, serializable),
		class("java.util.HashSet", []string{"E"}, object,
			ClassOf("java.util.Set", self("java.util.HashSet", "E")), &Class{Name: CloneableName}, serializable),
		class("java.util.HashMap", []string{"K", "V"}, object,
			ClassOf("java.util.Map", self("java.util.HashMap", "K"), self("java.util.HashMap", "V")), &Class{Name: CloneableName}, serializable),

		iface("java.util.function.Function", []string{"T", "R"}),
		iface("java.util.function.Supplier", []string{"T"}),
		iface("java.util.function.Consumer", []string{"T"}),
	)
	for _, d := range decls {
		if err := p.Declare(d); err != nil {
			panic(err)
		}
	}
}
