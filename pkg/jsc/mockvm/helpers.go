package mockvm

import (
	"fmt"

	"github.com/dop251/goja"
)

// helperSource builds the JS-side primitives the VM needs. It runs in sloppy
// mode so assignment and delete follow C API (non-strict) semantics.
const helperSource = `(function () {
	var global = this;
	return {
		typeOf: function (v) { return v === null ? "null" : typeof v; },
		isArray: function (v) { return Array.isArray(v); },
		tag: function (v) { return Object.prototype.toString.call(v).slice(8, -1); },
		instanceOf: function (v, c) { return v instanceof c; },
		looseEqual: function (a, b) { return a == b; },
		strictEqual: function (a, b) { return a === b; },
		toNumber: function (v) { return +v; },
		toString: function (v) {
			if (typeof v === "symbol") throw new TypeError("Cannot convert a symbol to a string");
			return String(v);
		},
		toObject: function (v) {
			if (v === undefined || v === null) throw new TypeError("Cannot convert " + v + " to object");
			return Object(v);
		},
		stringify: function (v, indent) { return JSON.stringify(v, null, indent); },
		parse: function (s) { return JSON.parse(s); },
		makeArray: function () { return Array.prototype.slice.call(arguments); },
		makeError: function () { return Reflect.construct(Error, arguments); },
		makeSymbol: function (d) { return d === undefined ? Symbol() : Symbol(d); },
		syntaxError: function (m) { return new SyntaxError(m); },
		error: function (m) { return new Error(m); },
		has: function (o, k) { return k in o; },
		get: function (o, k) { return o[k]; },
		set: function (o, k, v) { o[k] = v; },
		define: function (o, k, v, ro, de, dd) {
			if (Object.prototype.hasOwnProperty.call(o, k)) { o[k] = v; return; }
			Object.defineProperty(o, k, { value: v, writable: !ro, enumerable: !de, configurable: !dd });
		},
		del: function (o, k) { return delete o[k]; },
		keys: function (o) { var r = []; for (var k in o) r.push(k); return r; },
		getPrototype: function (o) { return Object.getPrototypeOf(o); },
		setPrototype: function (o, p) {
			if (p === null || typeof p === "object" || typeof p === "function") {
				try { Object.setPrototypeOf(o, p); } catch (e) {}
			}
		},
		isConstructor: function (f) {
			if (typeof f !== "function") return false;
			try { Reflect.construct(String, [], f); return true; } catch (e) { return false; }
		},
		construct: function (c, args) { return Reflect.construct(c, args); },
		evalWith: function (s) { return eval(s); },
		makeTypedArray: function (name, n) {
			var C = global[name];
			if (typeof C !== "function") throw new TypeError(name + " is not supported");
			return new C(n);
		},
		typedArrayInfo: function (a) { return [a.length, a.byteLength, a.byteOffset]; },
		buffer: function (a) { return a.buffer; },
		charCodes: function (s) {
			var r = new Array(s.length);
			for (var i = 0; i < s.length; i++) r[i] = s.charCodeAt(i);
			return r;
		},
		fromCharCodes: function (a) {
			var s = "";
			for (var i = 0; i < a.length; i += 4096) s += String.fromCharCode.apply(null, a.slice(i, i + 4096));
			return s;
		},
		defineName: function (f, n) { Object.defineProperty(f, "name", { value: n, configurable: true }); },
		callable: function (call, construct) {
			return function () {
				if (new.target) {
					if (!construct) throw new TypeError("object is not a constructor");
					return construct.apply(undefined, arguments);
				}
				if (!call) throw new TypeError("object is not a function");
				return call.apply(this, arguments);
			};
		}
	};
})()`

type helpers map[string]goja.Callable

func loadHelpers(rt *goja.Runtime) (helpers, error) {
	v, err := rt.RunString(helperSource)
	if err != nil {
		return nil, fmt.Errorf("mockvm: load helpers: %w", err)
	}
	obj := v.ToObject(rt)
	h := make(helpers)
	for _, k := range obj.Keys() {
		fn, ok := goja.AssertFunction(obj.Get(k))
		if !ok {
			return nil, fmt.Errorf("mockvm: helper %q is not callable", k)
		}
		h[k] = fn
	}
	return h, nil
}
