package website

import (
	"fmt"
	"sort"
	"strings"
)

// Color palette: warm amber on cream, with the flag green as accent.
// Text colours keep at least 4.5:1 against bg and bgAlt.
var Colors = map[string]string{
	// Backgrounds
	"bg":      "#FFFBEB", // Cream - main background
	"bgAlt":   "#FFFFFF", // Cards, form fields
	"bgTint":  "#FEF3C7", // Alternate sections
	"bgDark":  "#1C1917", // Footer, lightbox backdrop
	"overlay": "rgba(28,25,23,0.92)",

	// Text
	"text":      "#1C1917", // Stone 900 (16:1 on bg)
	"textMuted": "#57534E", // Stone 600 (7:1 on bg)
	"textLight": "#F5F5F4", // On dark surfaces

	// Brand
	"primary":       "#92400E", // Amber 800 (7.6:1 on bg)
	"primaryBright": "#B45309", // Amber 700, hover
	"primarySoft":   "#FDE68A",
	"accent":        "#047857", // Emerald 700

	// Status
	"success": "#047857",
	"danger":  "#B91C1C",
	"info":    "#1D4ED8",

	// Borders
	"border":      "#E7E5E4",
	"borderLight": "#F5F5F4",
}

// Typography uses system font stack for instant loading
var FontFamily = `system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif`
var FontSerif = `Georgia, 'Times New Roman', serif`

// RenderStyles returns the complete stylesheet.
func RenderStyles() string {
	var sb strings.Builder
	for _, part := range []string{
		cssReset(),
		cssVariables(Colors),
		cssBase(),
		cssTypography(),
		cssLayout(),
		cssButtons(),
		cssNavbar(),
		cssHero(),
		cssAbout(),
		cssTraditions(),
		cssGallery(),
		cssLightbox(),
		cssContact(),
		cssFooter(),
		cssAnimations(),
		cssAccessibility(),
		cssResponsive(),
	} {
		sb.WriteString(strings.TrimSpace(part))
		sb.WriteString("\n")
	}
	return sb.String()
}

func cssReset() string {
	return `
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
html{-webkit-text-size-adjust:100%;tab-size:4;scroll-behavior:smooth;scroll-padding-top:4.5rem}
body{line-height:1.6;-webkit-font-smoothing:antialiased}
img,picture,video,canvas,svg,iframe{display:block;max-width:100%}
input,button,textarea,select{font:inherit}
p,h1,h2,h3,h4{overflow-wrap:break-word}
a{color:inherit;text-decoration:none}
ul,ol{list-style:none}
`
}

// cssVariables emits the palette as custom properties. Names are sorted so
// the stylesheet is byte-stable between renders.
func cssVariables(colors map[string]string) string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]string, 0, len(names))
	for _, name := range names {
		vars = append(vars, fmt.Sprintf("--color-%s:%s", name, colors[name]))
	}
	return fmt.Sprintf(`:root{%s;--font-sans:%s;--font-serif:%s}`, strings.Join(vars, ";"), FontFamily, FontSerif)
}

func cssBase() string {
	return `
body{font-family:var(--font-sans);background:var(--color-bg);color:var(--color-text);min-height:100vh}
::selection{background:var(--color-primary);color:white}
body.lightbox-open{overflow:hidden}
`
}

func cssTypography() string {
	return `
h1,h2{font-family:var(--font-serif);letter-spacing:-0.01em}
h1{font-size:clamp(2.25rem,6vw,4.5rem);font-weight:700;line-height:1.1}
h2{font-size:clamp(1.75rem,4vw,2.5rem);font-weight:700;line-height:1.2;color:var(--color-primary)}
h3{font-size:1.2rem;font-weight:600;line-height:1.3}
p{color:var(--color-textMuted)}
.prose p+p{margin-top:0.75rem}
.prose a{color:var(--color-primary);text-decoration:underline}
.highlight{color:var(--color-primarySoft)}
`
}

func cssLayout() string {
	// Mobile-first: base styles for mobile (320px+)
	return `
.container{width:100%;max-width:1200px;margin:0 auto;padding:0 1rem}
.section{padding:3rem 0}
.section-tint{background:var(--color-bgTint)}
.section-head{text-align:center;max-width:680px;margin:0 auto 2rem}
.section-head p{margin-top:0.75rem}
.divider{width:4rem;height:3px;background:var(--color-primary);margin:0.75rem auto 0;border-radius:2px}
.grid{display:grid;gap:1.5rem;grid-template-columns:1fr}
.center{text-align:center;margin-top:2rem}
`
}

func cssButtons() string {
	// 44px minimum tap target
	return `
.btn{display:inline-flex;align-items:center;justify-content:center;gap:0.5rem;padding:0.75rem 1.5rem;font-weight:600;border-radius:9999px;border:2px solid transparent;cursor:pointer;transition:all 0.2s ease;min-height:2.75rem}
.btn:disabled{opacity:0.6;cursor:not-allowed}
.btn-primary{background:var(--color-primary);color:#FFFFFF}
.btn-primary:hover:not(:disabled){background:var(--color-primaryBright);transform:translateY(-2px)}
.btn-outline{border-color:currentColor;color:inherit;background:transparent}
.btn-outline:hover{background:rgba(255,255,255,0.12)}
.btn-link{background:none;border:none;color:var(--color-primary);font-weight:600;cursor:pointer;padding:0.5rem 0;min-height:2.75rem}
.btn-link:hover{text-decoration:underline}
`
}

func cssNavbar() string {
	return `
.nav{position:fixed;top:0;left:0;right:0;z-index:100;padding:1rem 0;transition:background 0.3s ease,box-shadow 0.3s ease,padding 0.3s ease;color:#FFFFFF}
.nav.scrolled{background:rgba(255,251,235,0.97);box-shadow:0 2px 12px rgba(0,0,0,0.08);padding:0.5rem 0;color:var(--color-text)}
.nav-inner{display:flex;align-items:center;justify-content:space-between}
.logo{font-family:var(--font-serif);font-size:1.5rem;font-weight:700}
.nav.scrolled .logo{color:var(--color-primary)}
.nav-links{display:none;gap:0.25rem}
.nav-link{padding:0.5rem 0.9rem;border-radius:9999px;font-weight:500;background:none;border:none;color:inherit;cursor:pointer}
.nav-link:hover,.nav-link.active{background:rgba(146,64,14,0.14)}
.nav-link.active{font-weight:700}
.nav-toggle{display:inline-flex;flex-direction:column;gap:5px;background:none;border:none;padding:0.75rem;cursor:pointer;color:inherit}
.nav-toggle span{display:block;width:24px;height:2px;background:currentColor;transition:transform 0.2s ease,opacity 0.2s ease}
.nav-toggle.open span:nth-child(1){transform:translateY(7px) rotate(45deg)}
.nav-toggle.open span:nth-child(2){opacity:0}
.nav-toggle.open span:nth-child(3){transform:translateY(-7px) rotate(-45deg)}
.mobile-menu{display:none;background:var(--color-bg);color:var(--color-text);border-top:1px solid var(--color-border);padding:0.5rem 1rem 1rem}
.mobile-menu.open{display:flex;flex-direction:column}
.mobile-menu .nav-link{text-align:left;border-radius:0.5rem}
`
}

func cssHero() string {
	return `
.hero{position:relative;min-height:100vh;display:flex;align-items:center;color:#FFFFFF;background:linear-gradient(135deg,#78350F 0%,#92400E 45%,#065F46 100%)}
.hero-inner{text-align:center;padding-top:5rem;padding-bottom:3rem}
.hero-title{margin-bottom:1.25rem}
.hero-subtitle{font-size:1.1rem;color:#FDE68A;max-width:640px;margin:0 auto 2rem}
.hero-actions{display:flex;flex-direction:column;gap:0.75rem;justify-content:center;align-items:center}
.hero-actions .btn-primary{background:#FFFFFF;color:var(--color-primary)}
.scroll-cue{display:block;margin:3rem auto 0;width:1.5rem;height:2.5rem;border:2px solid rgba(255,255,255,0.7);border-radius:1rem;position:relative}
.scroll-cue::after{content:"";position:absolute;left:50%;top:0.4rem;width:4px;height:8px;margin-left:-2px;background:#FFFFFF;border-radius:2px;animation:cue 1.6s infinite}
`
}

func cssAbout() string {
	return `
.about-grid{display:grid;gap:2rem;align-items:center}
.about-image{border-radius:1rem;overflow:hidden;box-shadow:0 20px 40px rgba(0,0,0,0.15)}
.about-image img{width:100%;height:100%;object-fit:cover;aspect-ratio:4/3}
.about-subtitle{font-weight:600;color:var(--color-text);margin:0.75rem 0}
.highlights{margin-top:1.25rem;display:flex;flex-direction:column;gap:0.5rem}
.highlights li{padding-left:1.5rem;position:relative;color:var(--color-text)}
.highlights li::before{content:"\2726";position:absolute;left:0;color:var(--color-primary)}
.stats{display:grid;grid-template-columns:repeat(2,1fr);gap:1rem;margin-top:2.5rem}
.stat{background:var(--color-bgAlt);border-radius:0.75rem;padding:1.25rem;text-align:center;border:1px solid var(--color-border)}
.stat-number{font-family:var(--font-serif);font-size:2rem;font-weight:700;color:var(--color-primary)}
.stat-label{font-size:0.9rem;color:var(--color-textMuted)}
`
}

func cssTraditions() string {
	return `
.tradition{background:var(--color-bgAlt);border-radius:1rem;overflow:hidden;border:1px solid var(--color-border);display:flex;flex-direction:column;transition:transform 0.3s ease,box-shadow 0.3s ease}
.tradition:hover{transform:translateY(-4px);box-shadow:0 16px 32px rgba(0,0,0,0.1)}
.tradition-image{aspect-ratio:16/10;object-fit:cover;width:100%}
.tradition-body{padding:1.25rem;display:flex;flex-direction:column;gap:0.5rem;flex:1}
.tradition-icon{font-size:1.75rem}
.tradition-category{font-size:0.75rem;text-transform:uppercase;letter-spacing:0.08em;color:var(--color-accent);font-weight:700}
.tradition-details{border-top:1px solid var(--color-border);padding-top:0.75rem;margin-top:0.25rem}
`
}

func cssGallery() string {
	return `
.filters{display:flex;flex-wrap:wrap;gap:0.5rem;justify-content:center;margin-bottom:1.5rem}
.chip{padding:0.4rem 1rem;border-radius:9999px;border:1px solid var(--color-primary);background:transparent;color:var(--color-primary);cursor:pointer;font-weight:500;min-height:2.5rem}
.chip.active{background:var(--color-primary);color:#FFFFFF}
.chip-count{opacity:0.75;font-size:0.85em}
.gallery-grid{display:grid;gap:1rem;grid-template-columns:1fr}
.gallery-card{position:relative;border-radius:0.75rem;overflow:hidden;aspect-ratio:1/1;background:var(--color-border);cursor:pointer;border:none;padding:0;width:100%;display:block}
.gallery-card[hidden]{display:none}
.gallery-card img{width:100%;height:100%;object-fit:cover;opacity:0;transition:opacity 0.4s ease,transform 0.4s ease}
.gallery-card.loaded img{opacity:1}
.gallery-card:hover img{transform:scale(1.06)}
.skeleton{position:absolute;inset:0;background:linear-gradient(90deg,#E7E5E4 25%,#F5F5F4 50%,#E7E5E4 75%);background-size:200% 100%;animation:shimmer 1.4s infinite}
.gallery-card.loaded .skeleton{display:none}
.caption{position:absolute;left:0;right:0;bottom:0;padding:1rem;text-align:left;color:#FFFFFF;background:linear-gradient(transparent,rgba(0,0,0,0.75));opacity:0;transition:opacity 0.3s ease}
.gallery-card:hover .caption,.gallery-card:focus-visible .caption{opacity:1}
.caption-title{font-weight:600;display:block}
.caption-category{font-size:0.8rem;color:#FDE68A}
`
}

func cssLightbox() string {
	return `
.lightbox{position:fixed;inset:0;z-index:200;display:flex;align-items:center;justify-content:center;padding:1rem}
.lightbox-backdrop{position:absolute;inset:0;background:var(--color-overlay);border:none;cursor:zoom-out}
.lightbox-frame{position:relative;max-width:min(1000px,100%);max-height:100%;display:flex;flex-direction:column;align-items:center;gap:0.75rem}
.lightbox-frame img{max-height:75vh;width:auto;border-radius:0.5rem;box-shadow:0 20px 60px rgba(0,0,0,0.5)}
.lightbox-caption{color:var(--color-textLight);text-align:center}
.lightbox-caption p{color:#D6D3D1}
.lightbox-counter{font-size:0.85rem;color:#A8A29E}
.lightbox-btn{position:absolute;background:rgba(255,255,255,0.12);color:#FFFFFF;border:none;border-radius:50%;width:3rem;height:3rem;font-size:1.5rem;cursor:pointer;display:flex;align-items:center;justify-content:center}
.lightbox-btn:hover{background:rgba(255,255,255,0.25)}
.lightbox-close{top:1rem;right:1rem}
.lightbox-prev{left:1rem;top:50%;transform:translateY(-50%)}
.lightbox-next{right:1rem;top:50%;transform:translateY(-50%)}
`
}

func cssContact() string {
	return `
.contact-grid{display:grid;gap:2rem}
.form{background:var(--color-bgAlt);border-radius:1rem;padding:1.5rem;border:1px solid var(--color-border);display:flex;flex-direction:column;gap:1rem}
.form-row{display:grid;gap:1rem}
.field{display:flex;flex-direction:column;gap:0.35rem}
.field label{font-weight:600;font-size:0.9rem}
.field input,.field textarea{padding:0.7rem 0.9rem;border:1px solid var(--color-border);border-radius:0.5rem;background:var(--color-bg);color:var(--color-text)}
.field textarea{min-height:8rem;resize:vertical}
.field input:focus,.field textarea:focus{outline:2px solid var(--color-primary);outline-offset:1px}
.field.invalid input,.field.invalid textarea{border-color:var(--color-danger)}
.field-error{color:var(--color-danger);font-size:0.85rem;min-height:1.2em}
.banner{padding:0.9rem 1rem;border-radius:0.5rem;font-weight:600}
.banner-success{background:#D1FAE5;color:#065F46}
.banner-error{background:#FEE2E2;color:#991B1B}
.info-cards{display:grid;gap:1rem}
.info-card{display:flex;gap:1rem;align-items:flex-start;background:var(--color-bgAlt);padding:1rem;border-radius:0.75rem;border:1px solid var(--color-border)}
.info-card h3{font-size:1rem}
.map{margin-top:1.5rem}
.map h3{margin-bottom:0.75rem}
.map iframe{width:100%;height:280px;border:0;border-radius:0.75rem}
`
}

func cssFooter() string {
	return `
.footer{background:var(--color-bgDark);color:var(--color-textLight);padding:3rem 0 1.5rem}
.footer p,.footer a{color:#D6D3D1}
.footer a:hover{color:#FFFFFF}
.footer-grid{display:grid;gap:2rem}
.footer h3{color:#FFFFFF;margin-bottom:0.75rem}
.footer-brand{font-family:var(--font-serif);font-size:1.75rem;color:#FDE68A;margin-bottom:0.5rem}
.footer ul{display:flex;flex-direction:column;gap:0.4rem}
.socials{display:flex;gap:0.75rem;flex-wrap:wrap;margin-top:1rem}
.socials a{padding:0.35rem 0.75rem;border:1px solid #57534E;border-radius:9999px;font-size:0.85rem}
.newsletter{display:flex;gap:0.5rem;margin-top:0.75rem}
.newsletter input{flex:1;min-width:0;padding:0.6rem 0.9rem;border-radius:9999px;border:1px solid #57534E;background:#292524;color:#FFFFFF}
.newsletter-done{color:#6EE7B7;font-weight:600;margin-top:0.5rem}
.copyright{border-top:1px solid #292524;margin-top:2rem;padding-top:1.25rem;text-align:center;font-size:0.85rem}
.back-to-top{position:fixed;right:1.25rem;bottom:1.25rem;z-index:90;width:3rem;height:3rem;border-radius:50%;border:none;background:var(--color-primary);color:#FFFFFF;font-size:1.25rem;cursor:pointer;box-shadow:0 8px 20px rgba(0,0,0,0.2);opacity:0;pointer-events:none;transform:translateY(1rem);transition:opacity 0.3s ease,transform 0.3s ease}
.back-to-top.visible{opacity:1;pointer-events:auto;transform:none}
`
}

func cssAnimations() string {
	return `
@keyframes shimmer{0%{background-position:200% 0}100%{background-position:-200% 0}}
@keyframes cue{0%{opacity:1;transform:translateY(0)}100%{opacity:0;transform:translateY(12px)}}
@keyframes fadeUp{from{opacity:0;transform:translateY(24px)}to{opacity:1;transform:none}}
.js .reveal{opacity:0;transform:translateY(24px);transition:opacity 0.7s ease,transform 0.7s ease}
.js .reveal.is-visible{opacity:1;transform:none}
.hero-inner{animation:fadeUp 0.8s ease both}
@media(prefers-reduced-motion:reduce){*{animation-duration:0.01ms!important;animation-iteration-count:1!important;transition-duration:0.01ms!important}.js .reveal{opacity:1;transform:none}}
`
}

func cssAccessibility() string {
	return `
.sr-only{position:absolute;width:1px;height:1px;padding:0;margin:-1px;overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}
.skip-link{position:absolute;top:-40px;left:0;background:var(--color-primary);color:#FFFFFF;padding:0.5rem 1rem;z-index:1000;transition:top 0.3s;font-weight:600}
.skip-link:focus{top:0}
:focus-visible{outline:2px solid var(--color-primaryBright);outline-offset:2px}
`
}

func cssResponsive() string {
	// Mobile-first: breakpoints use min-width
	return `
@media(min-width:480px){
.hero-actions{flex-direction:row}
.container{padding:0 1.25rem}
.gallery-grid{grid-template-columns:repeat(2,1fr)}
}
@media(min-width:768px){
.nav-links{display:flex}
.nav-toggle{display:none}
.mobile-menu,.mobile-menu.open{display:none}
.section{padding:5rem 0}
.container{padding:0 1.5rem}
.about-grid{grid-template-columns:1fr 1fr}
.stats{grid-template-columns:repeat(4,1fr)}
.grid-3{grid-template-columns:repeat(2,1fr)}
.gallery-grid{grid-template-columns:repeat(3,1fr)}
.form-row{grid-template-columns:1fr 1fr}
.footer-grid{grid-template-columns:2fr 1fr 1fr 1.5fr}
.hero-subtitle{font-size:1.25rem}
}
@media(min-width:1024px){
.grid-3{grid-template-columns:repeat(3,1fr)}
.gallery-grid{grid-template-columns:repeat(4,1fr)}
.contact-grid{grid-template-columns:3fr 2fr}
}
`
}
