package parser

import "strconv"

// Parser is a recursive-descent backtracking parser over a LexedToken
// sequence. It never aborts on a malformed construct: every production
// tries its alternatives in turn and, on total failure, backtracks to
// where it started and lets its caller try the next one. The consumption-
// based error filter below relies on that backtracking discipline: a
// production only ever leaves tokens "consumed" for an attempt that
// actually succeeded.
//
// Modelled on the ARM emulator's two-pass assembler parser (cursor + explicit
// backtracking over a flat token slice) generalized from a single
// grammar to the alternation-heavy LOLCODE statement/expression grammar.
type Parser struct {
	tokens   []LexedToken
	current  int
	consumed []bool
	level    int
	errors   ErrorList
	stmtBase int // len(errors) at the start of the current top-level statement attempt
}

// NewParser creates a parser over a lexed token sequence. tokens must end
// with exactly one TokenEOF, as Lex guarantees.
func NewParser(tokens []LexedToken) *Parser {
	return &Parser{
		tokens:   tokens,
		consumed: make([]bool, len(tokens)),
	}
}

// Parse parses a complete program and returns the resulting AST together
// with the filtered diagnostic list. A non-empty ErrorList means codegen
// must not run over the returned Program.
func Parse(tokens []LexedToken) (*Program, ErrorList) {
	p := NewParser(tokens)
	prog := p.parseProgram()
	return prog, p.filteredErrors()
}

func (p *Parser) peek() LexedToken { return p.tokens[p.current] }

func (p *Parser) peekAt(n int) LexedToken {
	i := p.current + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

func (p *Parser) atEOF() bool { return p.peek().Token.Type == TokenEOF }

func (p *Parser) mark() int { return p.current }

// reset backtracks the cursor to start, un-consuming whatever this
// now-abandoned attempt consumed.
func (p *Parser) reset(start int) {
	for i := start; i < p.current; i++ {
		p.consumed[i] = false
	}
	p.current = start
}

// consume advances past the current token if it has type tt.
func (p *Parser) consume(tt TokenType) (LexedToken, bool) {
	if p.peek().Token.Type != tt {
		return LexedToken{}, false
	}
	tok := p.peek()
	p.consumed[p.current] = true
	p.current++
	return tok, true
}

// skipNewlines consumes zero or more newline tokens. Only called from
// expression-parsing positions: a newline between an operator keyword
// and its operands is permitted, but a statement's own terminating
// newline is never skipped this way.
func (p *Parser) skipNewlines() {
	for {
		if _, ok := p.consume(TokenNewline); !ok {
			return
		}
	}
}

func (p *Parser) enter() { p.level++ }
func (p *Parser) leave() { p.level-- }

// recordSpecific records a diagnostic for a production that matched a
// distinguishing leading keyword and then failed on a required later
// token: a specific, high-confidence explanation of what went wrong.
func (p *Parser) recordSpecific(msg string, tok LexedToken) {
	p.errors = append(p.errors, ParseError{Message: msg, Token: tok, Level: p.level, specific: true})
}

// recordGeneric records a production's own catch-all "nothing matched"
// diagnostic. Within the current top-level statement attempt (tracked by
// stmtBase), it replaces an immediately preceding generic diagnostic left
// behind by a failed child call — the shallower, more contextual message
// wins over "Expected valid expression" raised several calls down — and
// is suppressed entirely if that preceding diagnostic was specific: a
// specific explanation is already the best one available, and a generic
// fallback from an ancestor production adds nothing. Errors from earlier,
// already-concluded statement attempts are never touched.
func (p *Parser) recordGeneric(msg string, tok LexedToken) {
	if n := len(p.errors); n > p.stmtBase {
		if p.errors[n-1].specific {
			return
		}
		p.errors = p.errors[:n-1]
	}
	p.errors = append(p.errors, ParseError{Message: msg, Token: tok, Level: p.level, specific: false})
}

// filteredErrors applies the backtracking-aware filter: an error whose
// token ended up consumed by some other, ultimately successful attempt
// is no longer informative and is dropped. recordGeneric's replacement
// already collapses the common case of redundant nested generic
// fallbacks; this catches the remaining case where an abandoned
// production left a stale diagnostic pointing at a token a later,
// unrelated production went on to consume.
func (p *Parser) filteredErrors() ErrorList {
	var out ErrorList
	for _, e := range p.errors {
		if p.consumed[e.Token.Index] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// --- program ---

func (p *Parser) parseProgram() *Program {
	prog := &Program{}

	p.enter()
	defer p.leave()

	if _, ok := p.consume(TokenHAI); !ok {
		p.recordSpecific("Expected HAI to begin program", p.peek())
		return prog
	}
	if p.peek().Token.Type != TokenNumbarLit || p.peek().Token.Literal != "1.2" {
		p.recordSpecific("Expected version literal 1.2 after HAI", p.peek())
		return prog
	}
	p.consume(TokenNumbarLit)
	p.consumeTerminator()

	for !p.atEOF() {
		for p.skipBlankTerminator() {
		}
		if p.atEOF() {
			break
		}
		if kw, ok := p.consume(TokenKTHXBYE); ok {
			prog.Statements = append(prog.Statements, &ProgramEnd{span: newSpan(kw.Start, kw.End)})
			p.consumeTerminator()
			if !p.atEOF() {
				p.recordGeneric("Unexpected tokens after KTHXBYE", p.peek())
			}
			return prog
		}

		p.stmtBase = len(p.errors)
		if p.attachBareAssign(prog) {
			continue
		}

		p.stmtBase = len(p.errors)
		stmt, ok := p.parseStatement()
		if !ok {
			p.recoverToNextStatement()
			continue
		}
		prog.Statements = append(prog.Statements, stmt)
	}

	return prog
}

// recoverToNextStatement is called after a total statement-parse failure.
// It skips forward to the next terminator (or KTHXBYE/EOF) rather than
// retrying one token at a time, so a single malformed statement produces
// one diagnostic instead of one per leftover token inside it.
func (p *Parser) recoverToNextStatement() {
	for !p.atEOF() {
		switch p.peek().Token.Type {
		case TokenNewline, TokenComma:
			p.current++
			return
		case TokenKTHXBYE:
			return
		}
		p.current++
	}
}

// skipBlankTerminator consumes a single stray terminator token sitting
// between statements (blank lines), reporting whether it did.
func (p *Parser) skipBlankTerminator() bool {
	if _, ok := p.consume(TokenNewline); ok {
		return true
	}
	if _, ok := p.consume(TokenComma); ok {
		return true
	}
	return false
}

func (p *Parser) consumeTerminator() bool {
	if p.skipBlankTerminator() {
		return true
	}
	if p.atEOF() {
		return true
	}
	p.recordGeneric("Expected newline or comma to terminate statement", p.peek())
	return false
}

// --- statement ---

func (p *Parser) parseStatement() (Statement, bool) {
	if stmt, ok := p.tryVarDecl(); ok {
		p.consumeTerminator()
		return stmt, true
	}
	if stmt, ok := p.tryVarAssign(); ok {
		p.consumeTerminator()
		return stmt, true
	}
	if stmt, ok := p.tryVarCast(); ok {
		p.consumeTerminator()
		return stmt, true
	}
	if stmt, ok := p.tryVisible(); ok {
		p.consumeTerminator()
		return stmt, true
	}
	if stmt, ok := p.tryGimmeh(); ok {
		p.consumeTerminator()
		return stmt, true
	}
	if stmt, ok := p.tryExprStatement(); ok {
		p.consumeTerminator()
		return stmt, true
	}
	p.recordGeneric("Expected valid statement", p.peek())
	return nil, false
}

// tryVarDecl parses "I HAS A <name> [ITZ <type>]".
func (p *Parser) tryVarDecl() (Statement, bool) {
	start := p.mark()
	p.enter()
	defer p.leave()

	first, ok := p.consume(TokenI)
	if !ok {
		p.reset(start)
		return nil, false
	}
	if _, ok := p.consume(TokenHAS); !ok {
		p.recordSpecific("Expected HAS after I", p.peek())
		p.reset(start)
		return nil, false
	}
	if _, ok := p.consume(TokenA); !ok {
		p.recordSpecific("Expected A after I HAS", p.peek())
		p.reset(start)
		return nil, false
	}
	name, ok := p.consume(TokenIdentifier)
	if !ok {
		p.recordSpecific("Expected variable name after I HAS A", p.peek())
		p.reset(start)
		return nil, false
	}

	decl := &VarDecl{Name: name.Token.Literal}
	end := name.End

	if _, ok := p.consume(TokenITZ); ok {
		typeTok, ok := p.parseTypeKeyword()
		if !ok {
			p.recordSpecific("Expected a type after ITZ", p.peek())
			p.reset(start)
			return nil, false
		}
		decl.HasType = true
		decl.Type = typeTok.Token.Type
		end = typeTok.End
	}

	decl.span = newSpan(first.Start, end)
	return decl, true
}

// tryVarAssign parses "<name> R <expr>". A bare "R <expr>" with no
// leading identifier is handled by attachBareAssign instead, called
// directly from parseProgram's statement loop: the LHS here is always an
// explicit identifier.
func (p *Parser) tryVarAssign() (Statement, bool) {
	start := p.mark()
	p.enter()
	defer p.leave()

	name, ok := p.consume(TokenIdentifier)
	if !ok {
		p.reset(start)
		return nil, false
	}
	if _, ok := p.consume(TokenR); !ok {
		p.reset(start)
		return nil, false
	}
	value, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected an expression after R", p.peek())
		p.reset(start)
		return nil, false
	}
	_, end := value.Span()
	return &VarAssign{span: newSpan(name.Start, end), Name: name.Token.Literal, Value: value}, true
}

// tryVarCast parses "<name> IS NOW A <type>".
func (p *Parser) tryVarCast() (Statement, bool) {
	start := p.mark()
	p.enter()
	defer p.leave()

	name, ok := p.consume(TokenIdentifier)
	if !ok {
		p.reset(start)
		return nil, false
	}
	if _, ok := p.consume(TokenIS); !ok {
		p.reset(start)
		return nil, false
	}
	if _, ok := p.consume(TokenNOW); !ok {
		p.recordSpecific("Expected NOW after IS", p.peek())
		p.reset(start)
		return nil, false
	}
	if _, ok := p.consume(TokenA); !ok {
		p.recordSpecific("Expected A after IS NOW", p.peek())
		p.reset(start)
		return nil, false
	}
	typeTok, ok := p.parseTypeKeyword()
	if !ok {
		p.recordSpecific("Expected a type after IS NOW A", p.peek())
		p.reset(start)
		return nil, false
	}
	return &VarCast{span: newSpan(name.Start, typeTok.End), Name: name.Token.Literal, Type: typeTok.Token.Type}, true
}

// tryVisible parses "VISIBLE <expr>+ [!]", expressions optionally
// separated by AN.
func (p *Parser) tryVisible() (Statement, bool) {
	start := p.mark()
	p.enter()
	defer p.leave()

	kw, ok := p.consume(TokenVISIBLE)
	if !ok {
		p.reset(start)
		return nil, false
	}

	first, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected an expression after VISIBLE", p.peek())
		p.reset(start)
		return nil, false
	}
	args := []Expression{first}
	end := kw.End
	if _, e := first.Span(); e > end {
		end = e
	}

	for {
		save := p.mark()
		p.consume(TokenAN)
		arg, ok := p.parseExpression()
		if !ok {
			p.reset(save)
			break
		}
		args = append(args, arg)
		_, end = arg.Span()
	}

	suppress := false
	if excl, ok := p.consume(TokenExclamation); ok {
		suppress = true
		end = excl.End
	}

	return &Visible{span: newSpan(kw.Start, end), Args: args, SuppressNewline: suppress}, true
}

// tryGimmeh parses "GIMMEH <name>".
func (p *Parser) tryGimmeh() (Statement, bool) {
	start := p.mark()
	p.enter()
	defer p.leave()

	kw, ok := p.consume(TokenGIMMEH)
	if !ok {
		p.reset(start)
		return nil, false
	}
	name, ok := p.consume(TokenIdentifier)
	if !ok {
		p.recordSpecific("Expected a variable name after GIMMEH", p.peek())
		p.reset(start)
		return nil, false
	}
	return &Gimmeh{span: newSpan(kw.Start, name.End), Name: name.Token.Literal}, true
}

// tryExprStatement parses a bare expression used as a statement. It also
// implements the "R <expr>" declaration-with-initializer special case:
// when the leading token is R with no identifier before it, and the
// previous top-level statement was a VarDecl that has no initializer
// yet, the trailing var_decl is rewritten in place as the LHS of the
// assignment instead of requiring a separate, ordinary VarAssign.
func (p *Parser) tryExprStatement() (Statement, bool) {
	start := p.mark()
	p.enter()
	defer p.leave()

	expr, ok := p.parseExpression()
	if !ok {
		p.reset(start)
		return nil, false
	}
	s, e := expr.Span()
	return &ExpressionStatement{span: newSpan(s, e), Expr: expr}, true
}

// attachBareAssign implements the "R <expr>" declaration-with-initializer
// special case described on tryExprStatement. Called from parseProgram's
// statement loop before falling through to the ordinary statement
// dispatch, since it needs to see (and possibly mutate) the previously
// appended statement.
func (p *Parser) attachBareAssign(prog *Program) bool {
	if p.peek().Token.Type != TokenR {
		return false
	}
	if len(prog.Statements) == 0 {
		return false
	}
	decl, ok := prog.Statements[len(prog.Statements)-1].(*VarDecl)
	if !ok || decl.Init != nil {
		return false
	}

	start := p.mark()
	p.enter()
	defer p.leave()

	p.consume(TokenR)
	value, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected an expression after R", p.peek())
		p.reset(start)
		return false
	}
	decl.Init = value
	_, end := value.Span()
	decl.span = newSpan(decl.Start, end)
	p.consumeTerminator()
	return true
}

// parseTypeKeyword matches one of the five type keywords.
func (p *Parser) parseTypeKeyword() (LexedToken, bool) {
	for _, tt := range []TokenType{TokenNumber, TokenNumbar, TokenTroof, TokenYarn, TokenNoob} {
		if tok, ok := p.consume(tt); ok {
			return tok, true
		}
	}
	return LexedToken{}, false
}

// --- expression ---

// parseExpression dispatches on the current token's leading keyword.
// Exactly one of its arms is ever tried per call: the leading token
// uniquely identifies which grammar alternative applies, so a committed
// arm's failure is the definitive outcome and no further alternative is
// attempted. Only when the leading token matches none of them does
// parseExpression fall back to its own generic diagnostic.
func (p *Parser) parseExpression() (Expression, bool) {
	p.enter()
	defer p.leave()

	switch p.peek().Token.Type {
	case TokenSUM, TokenDIFF, TokenPRODUKT, TokenQUOSHUNT, TokenMOD, TokenBIGGR, TokenSMALLR:
		return p.parseBinaryArith()
	case TokenBOTH:
		if p.peekAt(1).Token.Type == TokenSAEM {
			return p.parseBothSaem()
		}
		return p.parseBinaryLogical(TokenBOTH, "BOTH")
	case TokenEITHER:
		return p.parseBinaryLogical(TokenEITHER, "EITHER")
	case TokenWON:
		return p.parseBinaryLogical(TokenWON, "WON")
	case TokenNOT:
		return p.parseUnaryNot()
	case TokenALL:
		return p.parseVariadic(TokenALL, "ALL")
	case TokenANY:
		return p.parseVariadic(TokenANY, "ANY")
	case TokenDIFFRINT:
		return p.parseDiffrint()
	case TokenSMOOSH:
		return p.parseSmoosh()
	case TokenMAEK:
		return p.parseCast()
	case TokenNumberLit, TokenNumbarLit, TokenStringLit, TokenWin, TokenFail:
		return p.parseLiteral()
	case TokenIdentifier:
		return p.parseVarRef()
	}

	p.recordGeneric("Expected valid expression", p.peek())
	return nil, false
}

func (p *Parser) parseLiteral() (Expression, bool) {
	tok := p.peek()
	switch tok.Token.Type {
	case TokenNumberLit:
		p.consume(TokenNumberLit)
		n, err := strconv.ParseInt(tok.Token.Literal, 10, 64)
		if err != nil {
			p.recordSpecific("Malformed number literal", tok)
			return nil, false
		}
		return &Literal{span: newSpan(tok.Start, tok.End), Kind: LitNumber, Number: n}, true
	case TokenNumbarLit:
		p.consume(TokenNumbarLit)
		f, err := strconv.ParseFloat(tok.Token.Literal, 32)
		if err != nil {
			p.recordSpecific("Malformed numbar literal", tok)
			return nil, false
		}
		return &Literal{span: newSpan(tok.Start, tok.End), Kind: LitNumbar, Numbar: float32(f)}, true
	case TokenStringLit:
		p.consume(TokenStringLit)
		return &Literal{span: newSpan(tok.Start, tok.End), Kind: LitString, Str: tok.Token.Literal}, true
	case TokenWin:
		p.consume(TokenWin)
		return &Literal{span: newSpan(tok.Start, tok.End), Kind: LitTroof, Troof: true}, true
	case TokenFail:
		p.consume(TokenFail)
		return &Literal{span: newSpan(tok.Start, tok.End), Kind: LitTroof, Troof: false}, true
	}
	return nil, false
}

func (p *Parser) parseVarRef() (Expression, bool) {
	tok, ok := p.consume(TokenIdentifier)
	if !ok {
		return nil, false
	}
	return &VarRef{span: newSpan(tok.Start, tok.End), Name: tok.Token.Literal}, true
}

// parseBinaryArith parses "<KW> OF <e> AN <e>" for the seven arithmetic
// keywords.
func (p *Parser) parseBinaryArith() (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(p.peek().Token.Type)
	if _, ok := p.consume(TokenOF); !ok {
		p.recordSpecific("Expected OF after "+kw.Token.Type.String(), p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	left, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected first operand after "+kw.Token.Type.String()+" OF", p.peek())
		p.reset(start)
		return nil, false
	}
	afterLeft := p.peek()
	p.skipNewlines()
	if _, ok := p.consume(TokenAN); !ok {
		p.recordSpecific("Expected AN keyword for "+kw.Token.Type.String(), afterLeft)
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	right, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected second operand after AN", p.peek())
		p.reset(start)
		return nil, false
	}
	_, end := right.Span()
	return &BinaryArith{span: newSpan(kw.Start, end), Op: kw.Token.Type, Left: left, Right: right}, true
}

// parseBinaryLogical parses "<KW> OF <e> AN <e>" for BOTH/EITHER/WON.
func (p *Parser) parseBinaryLogical(kind TokenType, name string) (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(kind)
	if _, ok := p.consume(TokenOF); !ok {
		p.recordSpecific("Expected OF after "+name, p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	left, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected first operand after "+name+" OF", p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	if _, ok := p.consume(TokenAN); !ok {
		p.recordSpecific("Expected AN keyword for "+name, p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	right, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected second operand after AN", p.peek())
		p.reset(start)
		return nil, false
	}
	_, end := right.Span()
	return &BinaryLogical{span: newSpan(kw.Start, end), Op: kind, Left: left, Right: right}, true
}

// parseBothSaem parses "BOTH SAEM <e> AN <e>" (no OF).
func (p *Parser) parseBothSaem() (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(TokenBOTH)
	p.consume(TokenSAEM)
	p.skipNewlines()
	left, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected first operand after BOTH SAEM", p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	if _, ok := p.consume(TokenAN); !ok {
		p.recordSpecific("Expected AN keyword for BOTH SAEM", p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	right, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected second operand after AN", p.peek())
		p.reset(start)
		return nil, false
	}
	_, end := right.Span()
	return &Comparison{span: newSpan(kw.Start, end), Op: TokenSAEM, Left: left, Right: right}, true
}

// parseDiffrint parses "DIFFRINT OF <e> AN <e>".
func (p *Parser) parseDiffrint() (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(TokenDIFFRINT)
	if _, ok := p.consume(TokenOF); !ok {
		p.recordSpecific("Expected OF after DIFFRINT", p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	left, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected first operand after DIFFRINT OF", p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	if _, ok := p.consume(TokenAN); !ok {
		p.recordSpecific("Expected AN keyword for DIFFRINT", p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	right, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected second operand after AN", p.peek())
		p.reset(start)
		return nil, false
	}
	_, end := right.Span()
	return &Comparison{span: newSpan(kw.Start, end), Op: TokenDIFFRINT, Left: left, Right: right}, true
}

// parseUnaryNot parses "NOT <e>".
func (p *Parser) parseUnaryNot() (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(TokenNOT)
	p.skipNewlines()
	operand, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected an operand after NOT", p.peek())
		p.reset(start)
		return nil, false
	}
	_, end := operand.Span()
	return &UnaryNot{span: newSpan(kw.Start, end), Operand: operand}, true
}

// parseVariadic parses "ALL OF"/"ANY OF" <e> (AN <e>)* MKAY.
func (p *Parser) parseVariadic(kind TokenType, name string) (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(kind)
	if _, ok := p.consume(TokenOF); !ok {
		p.recordSpecific("Expected OF after "+name, p.peek())
		p.reset(start)
		return nil, false
	}
	p.skipNewlines()
	first, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected an operand after "+name+" OF", p.peek())
		p.reset(start)
		return nil, false
	}
	operands := []Expression{first}

	for {
		save := p.mark()
		p.skipNewlines()
		if _, ok := p.consume(TokenAN); !ok {
			p.reset(save)
			break
		}
		p.skipNewlines()
		operand, ok := p.parseExpression()
		if !ok {
			p.reset(save)
			break
		}
		operands = append(operands, operand)
	}

	p.skipNewlines()
	end, ok := p.consume(TokenMKAY)
	if !ok {
		p.recordSpecific("Expected MKAY to close "+name+" OF", p.peek())
		p.reset(start)
		return nil, false
	}
	return &Variadic{span: newSpan(kw.Start, end.End), Op: kind, Operands: operands}, true
}

// parseSmoosh parses "SMOOSH <e> (AN <e>)* MKAY".
func (p *Parser) parseSmoosh() (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(TokenSMOOSH)
	p.skipNewlines()
	first, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected an operand after SMOOSH", p.peek())
		p.reset(start)
		return nil, false
	}
	operands := []Expression{first}

	for {
		save := p.mark()
		p.skipNewlines()
		if _, ok := p.consume(TokenAN); !ok {
			p.reset(save)
			break
		}
		p.skipNewlines()
		operand, ok := p.parseExpression()
		if !ok {
			p.reset(save)
			break
		}
		operands = append(operands, operand)
	}

	p.skipNewlines()
	end, ok := p.consume(TokenMKAY)
	if !ok {
		p.recordSpecific("Expected MKAY to close SMOOSH", p.peek())
		p.reset(start)
		return nil, false
	}
	return &Smoosh{span: newSpan(kw.Start, end.End), Operands: operands}, true
}

// parseCast parses "MAEK <e> A <type>".
func (p *Parser) parseCast() (Expression, bool) {
	start := p.mark()
	kw, _ := p.consume(TokenMAEK)
	operand, ok := p.parseExpression()
	if !ok {
		p.recordSpecific("Expected an expression after MAEK", p.peek())
		p.reset(start)
		return nil, false
	}
	if _, ok := p.consume(TokenA); !ok {
		p.recordSpecific("Expected A after MAEK <expr>", p.peek())
		p.reset(start)
		return nil, false
	}
	typeTok, ok := p.parseTypeKeyword()
	if !ok {
		p.recordSpecific("Expected a type after MAEK <expr> A", p.peek())
		p.reset(start)
		return nil, false
	}
	return &Cast{span: newSpan(kw.Start, typeTok.End), Operand: operand, Type: typeTok.Token.Type}, true
}
