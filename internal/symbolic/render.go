package symbolic

import (
	"math/big"
	"strings"

	"github.com/njchilds90/gosymbol"
)

// Render prints expr in host syntax: products with negative powers become
// divisions and sums use binary minus.
func Render(expr gosymbol.Expr) string {
	switch v := expr.(type) {
	case *gosymbol.Num:
		return renderRat(v.Rat())
	case *gosymbol.Sym:
		return v.Name()
	case *gosymbol.Add:
		return renderSum(v.Terms())
	case *gosymbol.Mul:
		return renderProduct(v.Factors())
	case *gosymbol.Pow:
		if isNegativeNum(v.ExpExpr()) {
			return renderProduct([]gosymbol.Expr{v})
		}
		return renderPower(v)
	default:
		return expr.String()
	}
}

func renderSum(terms []gosymbol.Expr) string {
	var b strings.Builder
	for i, term := range terms {
		s := Render(term)
		negative := strings.HasPrefix(s, "-")
		switch {
		case i == 0:
			b.WriteString(s)
		case negative:
			b.WriteString(" - ")
			b.WriteString(s[1:])
		default:
			b.WriteString(" + ")
			b.WriteString(s)
		}
	}
	return b.String()
}

func renderProduct(factors []gosymbol.Expr) string {
	coeff := big.NewRat(1, 1)
	var numer, denom []string

	for _, f := range factors {
		switch v := f.(type) {
		case *gosymbol.Num:
			coeff.Mul(coeff, v.Rat())
		case *gosymbol.Pow:
			if isNegativeNum(v.ExpExpr()) {
				exp := new(big.Rat).Neg(v.ExpExpr().(*gosymbol.Num).Rat())
				denom = append(denom, renderPowerParts(v.Base(), gosymbol.F(exp.Num().Int64(), exp.Denom().Int64())))
				continue
			}
			numer = append(numer, renderPower(v))
		case *gosymbol.Add:
			numer = append(numer, "("+Render(v)+")")
		default:
			numer = append(numer, Render(v))
		}
	}

	sign := ""
	if coeff.Sign() < 0 {
		sign = "-"
		coeff.Neg(coeff)
	}

	p := new(big.Rat).SetInt(coeff.Num())
	q := new(big.Rat).SetInt(coeff.Denom())

	switch {
	case len(numer) == 0:
		numer = []string{renderRat(p)}
	case coeff.IsInt() || p.Cmp(big.NewRat(1, 1)) == 0:
		if p.Cmp(big.NewRat(1, 1)) != 0 {
			numer = append([]string{renderRat(p)}, numer...)
		}
	case isTerminating(coeff.Denom()):
		numer = append([]string{renderRat(coeff)}, numer...)
		q = big.NewRat(1, 1)
	default:
		numer = append([]string{renderRat(p)}, numer...)
	}

	if q.Cmp(big.NewRat(1, 1)) != 0 {
		denom = append([]string{renderRat(q)}, denom...)
	}

	out := sign + strings.Join(numer, "*")
	switch len(denom) {
	case 0:
		return out
	case 1:
		return out + "/" + denom[0]
	default:
		return out + "/(" + strings.Join(denom, "*") + ")"
	}
}

func renderPower(p *gosymbol.Pow) string {
	return renderPowerParts(p.Base(), p.ExpExpr())
}

func renderPowerParts(base, exp gosymbol.Expr) string {
	if n, ok := exp.(*gosymbol.Num); ok && n.IsOne() {
		return atom(base)
	}
	return atom(base) + "^" + atom(exp)
}

// atom renders e, parenthesised unless it is a plain symbol or a non-negative
// integer.
func atom(e gosymbol.Expr) string {
	switch v := e.(type) {
	case *gosymbol.Sym:
		return v.Name()
	case *gosymbol.Num:
		if v.IsInteger() && !v.IsNegative() {
			return renderRat(v.Rat())
		}
	}
	return "(" + Render(e) + ")"
}

func isNegativeNum(e gosymbol.Expr) bool {
	n, ok := e.(*gosymbol.Num)
	return ok && n.IsNegative()
}

// renderRat prints integers as integers, terminating fractions as decimals and
// everything else as p/q.
func renderRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if isTerminating(r.Denom()) {
		return r.FloatString(decimalDigits(r.Denom()))
	}
	return r.RatString()
}

// isTerminating reports whether 1/d has a finite decimal expansion.
func isTerminating(d *big.Int) bool {
	n := new(big.Int).Set(d)
	for _, f := range []int64{2, 5} {
		bf := big.NewInt(f)
		m := new(big.Int)
		for {
			q, r := new(big.Int).QuoRem(n, bf, m)
			if r.Sign() != 0 {
				break
			}
			n = q
		}
	}
	return n.Cmp(big.NewInt(1)) == 0
}

func decimalDigits(d *big.Int) int {
	digits := 0
	for _, f := range []int64{2, 5} {
		n := new(big.Int).Set(d)
		bf := big.NewInt(f)
		count := 0
		for {
			q, r := new(big.Int).QuoRem(n, bf, new(big.Int))
			if r.Sign() != 0 {
				break
			}
			n = q
			count++
		}
		if count > digits {
			digits = count
		}
	}
	return digits
}
