package argos

// Every script prints exactly one JSON object on stdout. An "unavailable" key
// means argostranslate itself could not be imported.

const importPrelude = `
import json, sys
def emit(obj):
    sys.stdout.write(json.dumps(obj, ensure_ascii=True))
    sys.stdout.flush()
try:
    import argostranslate.package
    import argostranslate.translate
except Exception as e:
    emit({"unavailable": str(e)})
    sys.exit(0)
`

const listLanguagesScript = importPrelude + `
out = []
for lang in argostranslate.translate.get_installed_languages():
    targets = []
    for t in getattr(lang, "translations_from", []) or []:
        code = getattr(getattr(t, "to_lang", None), "code", None)
        if code:
            targets.append(code)
    out.append({"code": lang.code, "targets": targets})
emit({"languages": out})
`

const translateScript = importPrelude + `
req = json.loads(sys.stdin.buffer.read().decode("utf-8"))
try:
    text = argostranslate.translate.translate(req["text"], req["from"], req["to"])
    if text is None:
        raise Exception("No model for %s -> %s" % (req["from"], req["to"]))
    emit({"text": text})
except Exception as e:
    emit({"error": str(e)})
`

const updateIndexScript = importPrelude + `
try:
    argostranslate.package.update_package_index()
    emit({"ok": True})
except Exception as e:
    emit({"error": str(e)})
`

const availablePackagesScript = importPrelude + `
out = []
for p in argostranslate.package.get_available_packages():
    out.append({
        "from": p.from_code,
        "to": p.to_code,
        "version": str(getattr(p, "package_version", "") or ""),
    })
emit({"packages": out})
`

const installPackageScript = importPrelude + `
req = json.loads(sys.stdin.buffer.read().decode("utf-8"))
pkg = next((p for p in argostranslate.package.get_available_packages()
            if p.from_code == req["from"] and p.to_code == req["to"]), None)
if pkg is None:
    emit({"status": "not_found"})
    sys.exit(0)
try:
    argostranslate.package.install_from_path(pkg.download())
    emit({"status": "installed"})
except Exception as e:
    emit({"status": "error", "error": str(e)})
`
