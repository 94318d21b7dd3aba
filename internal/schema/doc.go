// Package schema loads the graph schema from CUE.
//
// A schema declares property keys, vertex labels and edge labels:
//
//	graph: {
//		propertyKeys: {
//			name: type: "string"
//			age:  type: "int"
//		}
//		vertexLabels: person: properties: ["name", "age"]
//		edgeLabels: knows: {from: "person", to: "person"}
//	}
//
// Property keys become well-known backend keys (codes from
// queryir.FirstSchemaKeyCode up, in declaration order) so the pushdown
// resolver can address them natively. The schema also validates elements
// before they are written to the store.
package schema
