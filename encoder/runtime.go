package encoder

import "fmt"

// runtimePreamble builds the fixed assembly header every generated program
// is prepended with: the global stack/heap/pointers the C target keeps in a
// machine struct, one subroutine per Machine operation (runtime_push through
// runtime_access_return_register, named to mirror targets/cvm's machine_*
// functions one-for-one), and one subroutine per foreign function. Layout
// and error messages follow targets/cvm/runtime.go's coreRuntime/stdRuntime
// statement-for-statement; the instruction sequences themselves are grounded
// on skx/math-compiler's compiler.go/generator.go, which already drives
// printf from hand-written Intel-syntax assembly using the same "integer
// args in the SysV registers, vector-register count in eax before a
// variadic call" idiom used below.
func runtimePreamble(stackSize, heapSize int) string {
	return fmt.Sprintf(`.intel_syntax noprefix
.extern printf
.extern getchar
.extern putchar
.extern strtol
.extern strtof
.extern snprintf
.extern strlen
.extern exit

.section .bss
stack_mem: .skip %d
heap_mem: .skip %d
strbuf: .skip %d

.section .data
sp: .long 0
bp: .long 0
allocated: .long 0
stack_size: .long %d
heap_size: .long %d
return_reg: .long 0

msg_stack_overflow: .asciz "panic: stack overflow\n"
msg_stack_underflow: .asciz "panic: stack underflow\n"
msg_heap_exhausted: .asciz "panic: heap exhausted\n"
msg_out_of_range: .asciz "panic: out of range\n"

fmt_str: .asciz "%%s"
fmt_int: .asciz "%%ld"
fmt_float: .asciz "%%f"
str_win: .asciz "WIN"
str_fail: .asciz "FAIL"

.section .text

# runtime_panic prints the NUL-terminated message pointed to by rdi and
# terminates the process. There is no recovery path once this is reached, the
# same way machine_panic in the C target always exits.
runtime_panic:
    mov rsi, rdi
    lea rdi, [rip+fmt_str]
    xor eax, eax
    call printf
    mov edi, 1
    call exit

# runtime_push stores the value in xmm0 at stack_mem[sp] and increments sp,
# panicking on overflow.
runtime_push:
    mov eax, [rip+sp]
    cmp eax, [rip+stack_size]
    jl .Lpush_ok
    lea rdi, [rip+msg_stack_overflow]
    call runtime_panic
.Lpush_ok:
    cdqe
    lea rcx, [rip+stack_mem]
    movss [rcx+rax*4], xmm0
    inc dword ptr [rip+sp]
    ret

# runtime_pop decrements sp and loads stack_mem[sp] into xmm0, panicking on
# underflow.
runtime_pop:
    mov eax, [rip+sp]
    cmp eax, 0
    jg .Lpop_ok
    lea rdi, [rip+msg_stack_underflow]
    call runtime_panic
.Lpop_ok:
    dec eax
    mov [rip+sp], eax
    cdqe
    lea rcx, [rip+stack_mem]
    movss xmm0, [rcx+rax*4]
    ret

# Every binary op pops b (pushed second, popped first) then a (pushed first,
# popped second) and pushes f(a, b) -- xmm0 holds a, xmm1 holds b throughout,
# the same left-then-right convention vm.Machine.binary documents.
runtime_add:
    call runtime_pop
    movss xmm1, xmm0
    call runtime_pop
    addss xmm0, xmm1
    jmp runtime_push

runtime_subtract:
    call runtime_pop
    movss xmm1, xmm0
    call runtime_pop
    subss xmm0, xmm1
    jmp runtime_push

runtime_multiply:
    call runtime_pop
    movss xmm1, xmm0
    call runtime_pop
    mulss xmm0, xmm1
    jmp runtime_push

runtime_divide:
    call runtime_pop
    movss xmm1, xmm0
    call runtime_pop
    xorps xmm2, xmm2
    ucomiss xmm1, xmm2
    jne .Ldivide_nonzero
    xorps xmm0, xmm0
    jmp runtime_push
.Ldivide_nonzero:
    divss xmm0, xmm1
    jmp runtime_push

runtime_modulo:
    call runtime_pop
    movss xmm1, xmm0
    call runtime_pop
    xorps xmm2, xmm2
    ucomiss xmm1, xmm2
    jne .Lmodulo_nonzero
    xorps xmm0, xmm0
    jmp runtime_push
.Lmodulo_nonzero:
    cvttss2si rax, xmm0
    cvttss2si rcx, xmm1
    cqo
    idiv rcx
    cvtsi2ss xmm0, rdx
    jmp runtime_push

runtime_sign:
    call runtime_pop
    xorps xmm1, xmm1
    ucomiss xmm0, xmm1
    ja .Lsign_pos
    jb .Lsign_neg
    xorps xmm0, xmm0
    jmp runtime_push
.Lsign_pos:
    mov eax, 0x3F800000
    movd xmm0, eax
    jmp runtime_push
.Lsign_neg:
    mov eax, 0xBF800000
    movd xmm0, eax
    jmp runtime_push

# runtime_allocate pops a cell count and pushes the base index of a freshly
# reserved heap region, panicking if it doesn't fit.
runtime_allocate:
    call runtime_pop
    cvttss2si eax, xmm0
    cmp eax, 0
    jl .Lalloc_bad
    mov ecx, [rip+allocated]
    add ecx, eax
    cmp ecx, [rip+heap_size]
    jg .Lalloc_bad
    mov edx, [rip+allocated]
    mov [rip+allocated], ecx
    cvtsi2ss xmm0, edx
    jmp runtime_push
.Lalloc_bad:
    lea rdi, [rip+msg_heap_exhausted]
    call runtime_panic

# runtime_free pops a pointer and walks the bump allocator back down to it.
runtime_free:
    call runtime_pop
    cvttss2si eax, xmm0
    mov [rip+allocated], eax
    ret

# runtime_store pops an address then a value and writes the value into
# heap_mem[address].
runtime_store:
    call runtime_pop
    cvttss2si r8d, xmm0
    call runtime_pop
    mov eax, r8d
    cdqe
    lea rcx, [rip+heap_mem]
    movss [rcx+rax*4], xmm0
    ret

# runtime_load pops an address and pushes heap_mem[address].
runtime_load:
    call runtime_pop
    cvttss2si eax, xmm0
    cdqe
    lea rcx, [rip+heap_mem]
    movss xmm0, [rcx+rax*4]
    jmp runtime_push

# runtime_copy pops a frame-relative offset and pushes
# stack_mem[bp+offset] without disturbing it.
runtime_copy:
    call runtime_pop
    cvttss2si eax, xmm0
    add eax, [rip+bp]
    cdqe
    lea rcx, [rip+stack_mem]
    movss xmm0, [rcx+rax*4]
    jmp runtime_push

# runtime_mov pops a frame-relative offset (top) then a value (below) and
# writes the value into stack_mem[bp+offset] in place.
runtime_mov:
    call runtime_pop
    cvttss2si eax, xmm0
    mov r8d, eax
    call runtime_pop
    mov eax, r8d
    add eax, [rip+bp]
    cdqe
    lea rcx, [rip+stack_mem]
    movss [rcx+rax*4], xmm0
    ret

runtime_load_base_ptr:
    cvtsi2ss xmm0, dword ptr [rip+bp]
    jmp runtime_push

# runtime_establish_stack_frame pushes the previous base pointer and sets bp
# to the current top of stack.
runtime_establish_stack_frame:
    cvtsi2ss xmm0, dword ptr [rip+bp]
    call runtime_push
    mov eax, [rip+sp]
    mov [rip+bp], eax
    ret

# runtime_end_stack_frame(argSize edi, localsSize esi) pops locals, restores
# bp, pops the return-address placeholder, then pops the caller's args.
runtime_end_stack_frame:
    push rdi
    push rsi
    mov eax, [rip+sp]
    sub eax, esi
    mov [rip+sp], eax
    call runtime_pop
    cvttss2si eax, xmm0
    mov [rip+bp], eax
    call runtime_pop
    pop rsi
    pop rdi
    mov eax, [rip+sp]
    sub eax, edi
    mov [rip+sp], eax
    ret

runtime_set_return_register:
    call runtime_pop
    movss [rip+return_reg], xmm0
    ret

runtime_access_return_register:
    movss xmm0, [rip+return_reg]
    jmp runtime_push

# heap_str_to_buf reads the length-prefixed heap string at the cell index in
# eax into strbuf as a NUL-terminated C string, matching the byte layout
# vm/foreign.go's readHeapString reads (cell 0 is the length, cells 1..n are
# one byte each).
heap_str_to_buf:
    push rbx
    mov ebx, eax
    lea rcx, [rip+heap_mem]
    cvttss2si edx, dword ptr [rcx+rbx*4]
    lea rdi, [rip+strbuf]
    xor esi, esi
.Lh2b_loop:
    cmp esi, edx
    jge .Lh2b_done
    mov r9d, ebx
    add r9d, esi
    inc r9d
    cvttss2si eax, dword ptr [rcx+r9*4]
    mov [rdi+rsi], al
    inc esi
    jmp .Lh2b_loop
.Lh2b_done:
    mov byte ptr [rdi+rsi], 0
    pop rbx
    ret

# buf_to_heap_str computes strbuf's length, bump-allocates n+1 heap cells,
# and writes the length then each byte as a float cell, returning the new
# string's base address in eax.
buf_to_heap_str:
    push rbx
    lea rdi, [rip+strbuf]
    call strlen
    mov ebx, eax
    mov ecx, [rip+allocated]
    mov edx, ecx
    add edx, ebx
    inc edx
    cmp edx, [rip+heap_size]
    jg .Lb2h_bad
    mov [rip+allocated], edx
    lea rsi, [rip+heap_mem]
    cvtsi2ss xmm0, ebx
    movss [rsi+rcx*4], xmm0
    xor edx, edx
.Lb2h_loop:
    cmp edx, ebx
    jge .Lb2h_done
    lea rdi, [rip+strbuf]
    movzx eax, byte ptr [rdi+rdx]
    cvtsi2ss xmm0, eax
    mov r9d, ecx
    add r9d, edx
    inc r9d
    movss [rsi+r9*4], xmm0
    inc edx
    jmp .Lb2h_loop
.Lb2h_done:
    mov eax, ecx
    pop rbx
    ret
.Lb2h_bad:
    lea rdi, [rip+msg_heap_exhausted]
    call runtime_panic

foreign_prn:
    call runtime_pop
    cvttss2si rsi, xmm0
    lea rdi, [rip+fmt_int]
    xor eax, eax
    call printf
    ret

foreign_prh:
    call runtime_pop
    cvtss2sd xmm0, xmm0
    lea rdi, [rip+fmt_float]
    mov eax, 1
    call printf
    ret

foreign_prs:
    call runtime_pop
    cvttss2si eax, xmm0
    call heap_str_to_buf
    lea rsi, [rip+strbuf]
    lea rdi, [rip+fmt_str]
    xor eax, eax
    call printf
    ret

foreign_prc:
    call runtime_pop
    xorps xmm1, xmm1
    ucomiss xmm0, xmm1
    je .Lprc_fail
    lea rsi, [rip+str_win]
    jmp .Lprc_print
.Lprc_fail:
    lea rsi, [rip+str_fail]
.Lprc_print:
    lea rdi, [rip+fmt_str]
    xor eax, eax
    call printf
    ret

foreign_prend:
    mov edi, 10
    call putchar
    ret

foreign_getch:
    call getchar
    cmp eax, -1
    jne .Lgetch_have
    mov eax, 0xBF800000
    movd xmm0, eax
    jmp runtime_push
.Lgetch_have:
    cvtsi2ss xmm0, eax
    jmp runtime_push

# foreign_read_string reads one line from stdin (stopping at '\n' or EOF),
# bounded by strbuf's capacity, then hands it to buf_to_heap_str.
foreign_read_string:
    lea rdi, [rip+strbuf]
    xor esi, esi
.Lread_loop:
    cmp esi, %d - 1
    jge .Lread_done
    call getchar
    cmp eax, -1
    je .Lread_done
    cmp eax, 10
    je .Lread_done
    lea rdi, [rip+strbuf]
    mov [rdi+rsi], al
    inc esi
    jmp .Lread_loop
.Lread_done:
    lea rdi, [rip+strbuf]
    mov byte ptr [rdi+rsi], 0
    call buf_to_heap_str
    cvtsi2ss xmm0, eax
    jmp runtime_push

foreign_float_to_int:
    call runtime_pop
    cvttss2si eax, xmm0
    cvtsi2ss xmm0, eax
    jmp runtime_push

# foreign_int_to_float is a true no-op: NUMBER and NUMBAR are both stored as
# float32 cells already, so popping and pushing the same value back would
# change nothing, and skipping both is equivalent.
foreign_int_to_float:
    ret

foreign_string_to_int:
    call runtime_pop
    cvttss2si eax, xmm0
    call heap_str_to_buf
    lea rdi, [rip+strbuf]
    xor esi, esi
    mov edx, 10
    call strtol
    cvtsi2ss xmm0, eax
    jmp runtime_push

foreign_string_to_float:
    call runtime_pop
    cvttss2si eax, xmm0
    call heap_str_to_buf
    lea rdi, [rip+strbuf]
    xor esi, esi
    call strtof
    jmp runtime_push

foreign_int_to_string:
    call runtime_pop
    cvttss2si ecx, xmm0
    lea rdi, [rip+strbuf]
    mov esi, %d
    lea rdx, [rip+fmt_int]
    xor eax, eax
    call snprintf
    call buf_to_heap_str
    cvtsi2ss xmm0, eax
    jmp runtime_push

foreign_float_to_string:
    call runtime_pop
    cvtss2sd xmm0, xmm0
    lea rdi, [rip+strbuf]
    mov esi, %d
    lea rdx, [rip+fmt_float]
    mov eax, 1
    call snprintf
    call buf_to_heap_str
    cvtsi2ss xmm0, eax
    jmp runtime_push
`, stackSize*4, heapSize*4, stringBufSize, stackSize, heapSize, stringBufSize, stringBufSize, stringBufSize)
}

// foreignLabels maps a CallForeign name to the assembly label that
// implements it, mirroring targets/cvm's foreignDispatch map. print_string
// is an alias for prs, the one name that isn't its own distinct routine.
var foreignLabels = map[string]string{
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
