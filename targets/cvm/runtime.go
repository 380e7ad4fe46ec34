// Package cvm serializes an ir.Module into a C translation unit that links
// against a small runtime: a machine struct plus the
// machine_* operations and the foreign function table. This is the one
// target the compiler treats as mandatory; the encoder package's assembly
// target is the optional second one.
package cvm

// coreRuntime implements the machine record and its primitive operations
// (machine_new through machine_halt). It is concatenated verbatim ahead of
// every generated program, the way skx/math-compiler's output() prepends a
// fixed assembly header before any program-specific instructions.
const coreRuntime = `
#include <stdio.h>
#include <stdlib.h>

typedef struct machine {
    float *stack;
    float *heap;
    int allocated;
    int stack_size;
    int heap_size;
    int stack_pointer;
    int base_ptr;
    float return_register;
} machine;

static void machine_panic(int code, const char *message) {
    fprintf(stderr, "panic (code %d): %s\n", code, message);
    exit(code == 0 ? 3 : code);
}

static machine *machine_new(int stack_size, int heap_size) {
    machine *m = calloc(1, sizeof(machine));
    m->stack = calloc((size_t)stack_size, sizeof(float));
    m->heap = calloc((size_t)heap_size, sizeof(float));
    m->stack_size = stack_size;
    m->heap_size = heap_size;
    return m;
}

static void machine_drop(machine *m) {
    free(m->stack);
    free(m->heap);
    free(m);
}

static void machine_push(machine *m, float v) {
    if (m->stack_pointer >= m->stack_size) {
        machine_panic(1, "stack overflow");
    }
    m->stack[m->stack_pointer++] = v;
}

static float machine_pop(machine *m) {
    if (m->stack_pointer <= 0) {
        machine_panic(2, "stack underflow");
    }
    return m->stack[--m->stack_pointer];
}

/* Every binary op pops b (pushed second, popped first) then a (pushed
   first, popped second) and computes a OP b -- see DESIGN.md. */
static void machine_add(machine *m) {
    float b = machine_pop(m), a = machine_pop(m);
    machine_push(m, a + b);
}

static void machine_subtract(machine *m) {
    float b = machine_pop(m), a = machine_pop(m);
    machine_push(m, a - b);
}

static void machine_multiply(machine *m) {
    float b = machine_pop(m), a = machine_pop(m);
    machine_push(m, a * b);
}

static void machine_divide(machine *m) {
    float b = machine_pop(m), a = machine_pop(m);
    machine_push(m, b == 0 ? 0 : a / b);
}

static void machine_modulo(machine *m) {
    float b = machine_pop(m), a = machine_pop(m);
    machine_push(m, b == 0 ? 0 : (float)((long)a % (long)b));
}

static void machine_sign(machine *m) {
    float v = machine_pop(m);
    machine_push(m, v > 0 ? 1.0f : (v < 0 ? -1.0f : 0.0f));
}

static void machine_allocate(machine *m) {
    int n = (int)machine_pop(m);
    if (n < 0 || m->allocated + n > m->heap_size) {
        machine_panic(1, "heap exhausted");
    }
    int base = m->allocated;
    m->allocated += n;
    machine_push(m, (float)base);
}

static void machine_free(machine *m) {
    int ptr = (int)machine_pop(m);
    m->allocated = ptr;
}

static void machine_store(machine *m, int size) {
    (void)size;
    int addr = (int)machine_pop(m);
    float v = machine_pop(m);
    m->heap[addr] = v;
}

static void machine_load(machine *m, int size) {
    (void)size;
    int addr = (int)machine_pop(m);
    machine_push(m, m->heap[addr]);
}

static void machine_copy(machine *m) {
    int off = (int)machine_pop(m);
    machine_push(m, m->stack[m->base_ptr + off]);
}

static void machine_mov(machine *m) {
    int off = (int)machine_pop(m);
    float v = machine_pop(m);
    m->stack[m->base_ptr + off] = v;
}

static void machine_load_base_ptr(machine *m) {
    machine_push(m, (float)m->base_ptr);
}

static void machine_establish_stack_frame(machine *m) {
    machine_push(m, (float)m->base_ptr);
    m->base_ptr = m->stack_pointer;
}

static void machine_end_stack_frame(machine *m, int args, int locals) {
    m->stack_pointer -= locals;
    m->base_ptr = (int)machine_pop(m);
    machine_pop(m); /* return address placeholder */
    m->stack_pointer -= args;
}

static void machine_set_return_register(machine *m) {
    m->return_register = machine_pop(m);
}

static void machine_access_return_register(machine *m) {
    machine_push(m, m->return_register);
}

static void machine_halt(machine *m) {
    (void)m;
}
`

// stdRuntime implements the foreign function table: the names
// callable from CallForeign. Ported statement-for-statement from
// vm/foreign.go's Go implementation so the native interpreter and the
// generated C program agree on semantics (string cells hold one byte each,
// length-prefixed; see DESIGN.md).
const stdRuntime = `
static int machine_read_string_bytes(machine *m, char *buf, int cap) {
    int n = 0;
    int c;
    while (n < cap - 1 && (c = getchar()) != EOF && c != '\n') {
        buf[n++] = (char)c;
    }
    buf[n] = 0;
    return n;
}

static int machine_alloc_string(machine *m, const char *s, int n) {
    if (m->allocated + n + 1 > m->heap_size) {
        machine_panic(1, "cannot allocate string");
    }
    int base = m->allocated;
    m->heap[base] = (float)n;
    for (int i = 0; i < n; i++) {
        m->heap[base + 1 + i] = (float)(unsigned char)s[i];
    }
    m->allocated += n + 1;
    return base;
}

static void foreign_prn(machine *m) {
    float v = machine_pop(m);
    printf("%ld", (long)v);
}

static void foreign_prh(machine *m) {
    float v = machine_pop(m);
    printf("%f", v);
}

static void foreign_prs(machine *m) {
    int addr = (int)machine_pop(m);
    int n = (int)m->heap[addr];
    for (int i = 0; i < n; i++) {
        putchar((int)m->heap[addr + 1 + i]);
    }
}

static void foreign_prc(machine *m) {
    float v = machine_pop(m);
    printf("%s", v != 0 ? "WIN" : "FAIL");
}

static void foreign_prend(machine *m) {
    (void)m;
    putchar('\n');
}

static void foreign_getch(machine *m) {
    int c = getchar();
    machine_push(m, c == EOF ? -1.0f : (float)c);
}

static void foreign_read_string(machine *m) {
    char buf[4096];
    int n = machine_read_string_bytes(m, buf, sizeof(buf));
    machine_push(m, (float)machine_alloc_string(m, buf, n));
}

static void foreign_float_to_int(machine *m) {
    float v = machine_pop(m);
    machine_push(m, (float)(long)v);
}

static void foreign_int_to_float(machine *m) {
    /* NUMBER and NUMBAR are both stored as float cells; no bits change. */
}

static void foreign_string_to_int(machine *m) {
    int addr = (int)machine_pop(m);
    int n = (int)m->heap[addr];
    char buf[4096];
    for (int i = 0; i < n && i < (int)sizeof(buf) - 1; i++) {
        buf[i] = (char)(unsigned char)m->heap[addr + 1 + i];
    }
    buf[n < (int)sizeof(buf) - 1 ? n : (int)sizeof(buf) - 1] = 0;
    machine_push(m, (float)atol(buf));
}

static void foreign_string_to_float(machine *m) {
    int addr = (int)machine_pop(m);
    int n = (int)m->heap[addr];
    char buf[4096];
    for (int i = 0; i < n && i < (int)sizeof(buf) - 1; i++) {
        buf[i] = (char)(unsigned char)m->heap[addr + 1 + i];
    }
    buf[n < (int)sizeof(buf) - 1 ? n : (int)sizeof(buf) - 1] = 0;
    machine_push(m, (float)atof(buf));
}

static void foreign_int_to_string(machine *m) {
    float v = machine_pop(m);
    char buf[32];
    int n = snprintf(buf, sizeof(buf), "%ld", (long)v);
    machine_push(m, (float)machine_alloc_string(m, buf, n));
}

static void foreign_float_to_string(machine *m) {
    float v = machine_pop(m);
    char buf[32];
    int n = snprintf(buf, sizeof(buf), "%f", v);
    machine_push(m, (float)machine_alloc_string(m, buf, n));
}
`

// foreignDispatch maps a CallForeign name to the C function that
// implements it, for the one name (print_string) that is an alias rather
// than a distinct runtime routine.
var foreignDispatch = map[string]string{
	"prn":             "foreign_prn",
	"prh":             "foreign_prh",
	"prs":             "foreign_prs",
	"print_string":    "foreign_prs",
	"prc":             "foreign_prc",
	"prend":           "foreign_prend",
	"getch":           "foreign_getch",
	"read_string":     "foreign_read_string",
	"float_to_int":    "foreign_float_to_int",
	"int_to_float":    "foreign_int_to_float",
	"string_to_int":   "foreign_string_to_int",
	"string_to_float": "foreign_string_to_float",
	"int_to_string":   "foreign_int_to_string",
	"float_to_string": "foreign_float_to_string",
}
